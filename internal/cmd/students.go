package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/roster"
	"git.sr.ht/~pdg/lectern/tabular"
)

var outputFlag = &cli.StringFlag{
	Name:  "output, o",
	Usage: "Write the table to a file instead of stdout",
}

var StudentsCmd = cli.Command{
	Name:   "students",
	Usage:  "Lists the students enrolled in the course",
	Flags:  []cli.Flag{outputFlag},
	Action: listStudents,
}

func studentsTable(students []canvas.User) *tabular.Table {
	t := tabular.New("id", "name", "sortable_name", "sis_user_id", "login_id")
	for _, s := range students {
		t.Append(strconv.FormatInt(s.ID, 10), s.Name, s.SortableName, s.SISUserID, s.LoginID)
	}
	return t
}

func listStudents(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	students, err := cl.ListStudents(context.Background())
	if err != nil {
		return err
	}
	if len(students) == 0 {
		info("no students enrolled")
		return nil
	}
	return studentsTable(students).WriteFile(c.String("output"))
}

var CheckCmd = cli.Command{
	Name:  "check",
	Usage: "Compares a roster spreadsheet against the course enrollment",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "roster",
			Usage: "CSV roster with SIS id and name in the first two columns",
		},
	},
	Action: checkEnrollment,
}

func loadRoster(path string) (roster.Roster, error) {
	if path == "" {
		return nil, fmt.Errorf("a roster file is required, pass --roster")
	}
	t, err := tabular.FromFile(path)
	if err != nil {
		return nil, err
	}
	return roster.FromTable(t)
}

func checkEnrollment(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	r, err := loadRoster(c.String("roster"))
	if err != nil {
		return err
	}
	students, err := cl.ListStudents(context.Background())
	if err != nil {
		return err
	}
	diff := r.Compare(students)
	info("%s", diff)
	if !diff.Clean() {
		return fmt.Errorf("enrollment check found discrepancies")
	}
	return nil
}
