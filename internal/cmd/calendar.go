package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/tabular"
	"git.sr.ht/~pdg/lectern/timetable"
)

var (
	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "Date at which to start",
		Value: defaultStartTime.Format("2006-01-02"),
	}
	endFlag = &cli.DurationFlag{
		Name:  "end",
		Usage: "Date interval to cover",
		Value: defaultDuration,
	}
)

var CalendarCmd = cli.Command{
	Name:  "calendar",
	Usage: "Manages the course calendar",
	Subcommands: []cli.Command{
		{
			Name:   "list",
			Usage:  "Lists calendar events in a date range",
			Flags:  []cli.Flag{startFlag, endFlag, outputFlag},
			Action: listEvents,
		},
		{
			Name:  "upload",
			Usage: "Creates events from a timetable spreadsheet, skipping occupied slots",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "file",
					Usage: "CSV timetable with Topic, Staff, Room, Date, Start Time and End Time columns",
				},
				&cli.StringFlag{
					Name:  "timezone",
					Usage: "Timezone the timetable's dates and times are written in",
					Value: "Local",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Don't create events, only report what would happen",
				},
			},
			Action: uploadCalendar,
		},
		{
			Name:   "remove",
			Usage:  "Removes every course event in a date range",
			Flags:  []cli.Flag{startFlag, endFlag},
			Action: removeEvents,
		},
	},
}

func eventsTable(events []canvas.Event) *tabular.Table {
	t := tabular.New("id", "title", "start_at", "end_at", "location", "description", "workflow_state")
	for _, ev := range events {
		t.Append(
			strconv.FormatInt(ev.ID, 10),
			ev.Title,
			ev.StartAt.Format(time.RFC3339),
			ev.EndAt.Format(time.RFC3339),
			ev.LocationName,
			tabular.FlattenHTML(ev.Description),
			ev.WorkflowState,
		)
	}
	return t
}

func listEvents(c *cli.Context) error {
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
		info("nothing found")
		return nil
	}
	return eventsTable(events).WriteFile(c.String("output"))
}

func uploadCalendar(c *cli.Context) error {
	path := c.String("file")
	if path == "" {
		return fmt.Errorf("a timetable file is required, pass --file")
	}
	loc, err := time.LoadLocation(c.String("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone %s: %w", c.String("timezone"), err)
	}
	table, err := tabular.FromFile(path)
	if err != nil {
		return err
	}
	rows, err := timetable.FromTable(table, loc)
	if err != nil {
		return err
	}

	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	dryRun := c.Bool("dry-run")

	for _, row := range rows {
		// look only at the day of the row; an upload spanning a term
		// shouldn't pull the whole course calendar for every line
		existing, err := cl.ListEvents(ctx, row.Start, row.End)
		if err != nil {
			return err
		}
		if conflict, found := row.Conflict(existing); found {
			info("Conflict detected for %s on %s with %s (%d). Skipping creation.",
				row.Title(), row.Start.Format("2006-01-02 at 15:04"), conflict.Title, conflict.ID)
			continue
		}
		if dryRun {
			info("would create %s, Start: %s, End: %s, Location: %s",
				row.Title(), row.Start.Format("15:04 on 2006-01-02"), row.End.Format("15:04 on 2006-01-02"), row.Location())
			continue
		}
		created, err := cl.CreateEvent(ctx, row.Event())
		if err != nil {
			errFn("Failed to create event for %s: %s", row.Title(), err)
			continue
		}
		info("Event created for %s: ID %d, Start: %s, End: %s, Location: %s",
			created.Title, created.ID,
			created.StartAt.Format("15:04 on 2006-01-02"),
			created.EndAt.Format("15:04 on 2006-01-02"),
			created.LocationName)
	}
	return nil
}

func removeEvents(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	start := parseStartDate(c.String("start"))
	removed, err := cl.RemoveEvents(context.Background(), start, start.Add(c.Duration("end")))
	for _, ev := range removed {
		info("Successfully removed event %s (ID: %d) on %s", ev.Title, ev.ID, ev.StartAt.Format("01/02/2006 at 15:04"))
	}
	return err
}

var EventCmd = cli.Command{
	Name:      "event",
	Usage:     "Fetches a single calendar event by id",
	ArgsUsage: "EVENT-ID",
	Flags:     []cli.Flag{outputFlag},
	Action:    showEvent,
}

func showEvent(c *cli.Context) error {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a numeric event id argument is required")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	ev, err := cl.GetEvent(context.Background(), id)
	if err != nil {
		return err
	}
	return eventsTable([]canvas.Event{*ev}).WriteFile(c.String("output"))
}
