package cmd

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/storage/boltdb"
)

var FetchCmd = cli.Command{
	Name:   "fetch",
	Usage:  "Fetches course calendar events and stores them locally for the ICS feed",
	Flags:  []cli.Flag{startFlag, endFlag},
	Action: fetchEvents,
}

func fetchEvents(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	start := parseStartDate(c.String("start"))
	events, err := cl.ListEvents(context.Background(), start, start.Add(c.Duration("end")))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		info("nothing to store")
		return nil
	}

	base := c.GlobalString("path")
	if err := MkDirIfNotExists(base); err != nil {
		return err
	}
	st := boltdb.New(boltdb.Config{
		Path:  filepath.Join(base, boltdb.DefaultFile),
		LogFn: info,
		ErrFn: errFn,
	})

	course := cl.Course()
	toSave := make([]canvas.Event, 0, len(events))
	for _, ev := range events {
		old := st.LoadEvent(course, ev.StartAt, ev.ID)
		if old.ID == ev.ID && !ev.UpdatedAt.After(old.UpdatedAt) {
			continue
		}
		toSave = append(toSave, ev)
	}
	if len(toSave) == 0 {
		info("all %d events already stored", len(events))
		return nil
	}
	if err := st.SaveEvents(course, toSave...); err != nil {
		return err
	}
	info("stored %d of %d events", len(toSave), len(events))
	return nil
}
