package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/internal/cmd"
)

func main() {
	var err error

	ctl := cli.App{
		Name:    fmt.Sprintf("%sctl", cmd.AppName),
		Version: cmd.AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "The path for storage",
				Value: cmd.DataPath(),
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "The base URL of the Canvas instance",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "The Canvas access token",
			},
			&cli.Int64Flag{
				Name:  "course",
				Usage: "The Canvas course id to operate on",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Output debug messages",
			},
		},
		Commands: []cli.Command{
			cmd.AuthorizeCmd,
			cmd.StudentsCmd,
			cmd.CheckCmd,
			cmd.AssignmentsCmd,
			cmd.OverridesCmd,
			cmd.AssignCmd,
			cmd.CalendarCmd,
			cmd.EventCmd,
			cmd.GroupsCmd,
			cmd.FetchCmd,
			cmd.IcsCmd,
		},
	}

	err = ctl.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
