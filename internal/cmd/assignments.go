package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/roster"
	"git.sr.ht/~pdg/lectern/tabular"
)

var AssignmentsCmd = cli.Command{
	Name:  "assignments",
	Usage: "Lists the assignments of the course",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "published",
			Usage: "Filter by publication state: all, published, unpublished",
			Value: string(canvas.PublishedAll),
		},
		outputFlag,
	},
	Action: listAssignments,
}

func listAssignments(c *cli.Context) error {
	filter := canvas.PublishedFilter(c.String("published"))
	switch filter {
	case canvas.PublishedAll, canvas.PublishedOnly, canvas.Unpublished:
	default:
		return fmt.Errorf("invalid published filter %s", filter)
	}

	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	assignments, err := cl.ListAssignments(context.Background(), filter)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		info("no assignments found")
		return nil
	}

	t := tabular.New("id", "name", "due_at", "points_possible", "published")
	for _, a := range assignments {
		due := ""
		if a.DueAt != nil {
			due = a.DueAt.Format(time.RFC3339)
		}
		t.Append(
			strconv.FormatInt(a.ID, 10),
			a.Name,
			due,
			strconv.FormatFloat(a.PointsPossible, 'f', -1, 64),
			strconv.FormatBool(a.Published),
		)
	}
	return t.WriteFile(c.String("output"))
}

var OverridesCmd = cli.Command{
	Name:  "overrides",
	Usage: "Manages per-student due date overrides",
	Subcommands: []cli.Command{
		{
			Name:  "list",
			Usage: "Lists the overrides of an assignment",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "assignment",
					Usage: "The assignment id",
				},
				outputFlag,
			},
			Action: listOverrides,
		},
		{
			Name:  "clear",
			Usage: "Removes every override from the given assignments",
			Flags: []cli.Flag{
				&cli.Int64SliceFlag{
					Name:  "assignment",
					Usage: "An assignment id to clear, can be repeated",
				},
			},
			Action: clearOverrides,
		},
	},
}

func listOverrides(c *cli.Context) error {
	aid := c.Int64("assignment")
	if aid == 0 {
		return fmt.Errorf("an assignment id is required, pass --assignment")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	overrides, err := cl.ListOverrides(context.Background(), aid)
	if err != nil {
		return err
	}
	if len(overrides) == 0 {
		info("no overrides on assignment %d", aid)
		return nil
	}

	t := tabular.New("id", "title", "student_ids", "due_at")
	for _, o := range overrides {
		ids := make([]string, len(o.StudentIDs))
		for i, id := range o.StudentIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		due := ""
		if o.DueAt != nil {
			due = o.DueAt.Format(time.RFC3339)
		}
		t.Append(strconv.FormatInt(o.ID, 10), o.Title, strings.Join(ids, " "), due)
	}
	return t.WriteFile(c.String("output"))
}

func clearOverrides(c *cli.Context) error {
	aids := c.Int64Slice("assignment")
	if len(aids) == 0 {
		return fmt.Errorf("at least one assignment id is required, pass --assignment")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	if err := cl.ClearOverrides(context.Background(), aids...); err != nil {
		return err
	}
	info("Completed removing overrides for assignments: %v", aids)
	return nil
}

var AssignCmd = cli.Command{
	Name:  "assign",
	Usage: "Creates due date overrides from a roster spreadsheet",
	Description: `The roster's first two columns are the SIS id and name; every further
column is headed by a due date and its cells carry assignment codes. The
codes are resolved to Canvas assignment ids through the --assignment
mappings, and one override is created per student and cell.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "roster",
			Usage: "CSV roster with assignment codes under due date columns",
		},
		&cli.StringSliceFlag{
			Name:  "assignment",
			Usage: "An assignment code mapping CODE=ID, can be repeated",
		},
		&cli.StringFlag{
			Name:  "map",
			Usage: "CSV file mapping assignment codes to Canvas assignment ids",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Assign even when the enrollment check finds discrepancies",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Don't create overrides, only report what would happen",
		},
	},
	Action: assignStudents,
}

var dueDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006",
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, f := range dueDateFormats {
		if d, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", s)
}

// assignmentCodes merges the --map file and the --assignment CODE=ID flags,
// the flags winning on collision.
func assignmentCodes(c *cli.Context) (map[string]int64, error) {
	codes := make(map[string]int64)
	if path := c.String("map"); path != "" {
		t, err := tabular.FromFile(path)
		if err != nil {
			return nil, err
		}
		for i := range t.Rows {
			code := t.Cell(i, 0)
			if code == "" {
				continue
			}
			id, err := strconv.ParseInt(t.Cell(i, 1), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid assignment id for code %s: %w", code, err)
			}
			codes[code] = id
		}
	}
	for _, kv := range c.StringSlice("assignment") {
		code, rawID, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("invalid assignment mapping %q, expected CODE=ID", kv)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment id in mapping %q: %w", kv, err)
		}
		codes[strings.TrimSpace(code)] = id
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no assignment code mappings given, pass --assignment or --map")
	}
	return codes, nil
}

func assignStudents(c *cli.Context) error {
	rosterPath := c.String("roster")
	if rosterPath == "" {
		return fmt.Errorf("a roster file is required, pass --roster")
	}
	table, err := tabular.FromFile(rosterPath)
	if err != nil {
		return err
	}
	if len(table.Header) < 3 {
		return fmt.Errorf("roster has no due date columns")
	}
	codes, err := assignmentCodes(c)
	if err != nil {
		return err
	}

	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	students, err := cl.ListStudents(ctx)
	if err != nil {
		return err
	}

	r, err := roster.FromTable(table)
	if err != nil {
		return fmt.Errorf("unable to read roster entries from %s: %w", rosterPath, err)
	}
	if diff := r.Compare(students); !diff.Clean() {
		info("%s", diff)
		if !c.Bool("force") {
			return fmt.Errorf("enrollment check found discrepancies, rerun with --force to assign anyway")
		}
	}

	ids := make(map[string]int64, len(students))
	for _, s := range students {
		if s.SISUserID != "" {
			ids[s.SISUserID] = s.ID
		}
	}

	dryRun := c.Bool("dry-run")
	for col := 2; col < len(table.Header); col++ {
		dueAt, err := parseDueDate(table.Header[col])
		if err != nil {
			return fmt.Errorf("column %d: %w", col+1, err)
		}
		for row := range table.Rows {
			code := table.Cell(row, col)
			if code == "" {
				continue
			}
			sis, name := table.Cell(row, 0), table.Cell(row, 1)
			aid, ok := codes[code]
			if !ok {
				errFn("unknown assignment code %s for %s (%s), skipping", code, name, sis)
				continue
			}
			uid, ok := ids[sis]
			if !ok {
				errFn("student %s (%s) not enrolled, skipping", name, sis)
				continue
			}
			if dryRun {
				info("would assign %s to %s (%s) due %s", code, name, sis, dueAt.Format("2006-01-02 15:04"))
				continue
			}
			if _, err := cl.CreateOverride(ctx, aid, []int64{uid}, dueAt); err != nil {
				errFn("failed to assign %s to %s (%s): %s", code, name, sis, err)
				continue
			}
			info("Assignment %d assigned to %s (%s) with due date %s", aid, name, sis, dueAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
