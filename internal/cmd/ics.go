package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/ical"
	"git.sr.ht/~pdg/lectern/storage"
	"git.sr.ht/~pdg/lectern/storage/boltdb"
)

var IcsCmd = cli.Command{
	Name:  "ics",
	Usage: "Exports the course calendar as an iCalendar file",
	Flags: []cli.Flag{
		startFlag,
		endFlag,
		&cli.BoolFlag{
			Name:  "stored",
			Usage: "Export from the local store instead of the Canvas API",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Calendar display name",
		},
		outputFlag,
	},
	Action: exportIcs,
}

func exportIcs(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	start := parseStartDate(c.String("start"))
	window := c.Duration("end")

	var events []canvas.Event
	if c.Bool("stored") {
		st := boltdb.New(boltdb.Config{
			Path:  filepath.Join(c.GlobalString("path"), boltdb.DefaultFile),
			ErrFn: errFn,
		})
		if events, err = st.LoadEvents(storage.Cursor(start, window), cl.Course()); err != nil {
			return err
		}
	} else {
		if events, err = cl.ListEvents(context.Background(), start, start.Add(window)); err != nil {
			return err
		}
	}
	if len(events) == 0 {
		return fmt.Errorf("no events to export, run %s fetch first or widen the date range", AppName)
	}

	w := os.Stdout
	if out := c.String("output"); out != "" && out != "-" {
		f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return ical.Write(w, cl.Course(), c.String("name"), events, AppVersion)
}
