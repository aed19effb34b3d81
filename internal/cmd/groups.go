package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/tabular"
)

var categoryFlag = &cli.Int64Flag{
	Name:  "category",
	Usage: "The group category (group set) id",
}

var GroupsCmd = cli.Command{
	Name:  "groups",
	Usage: "Manages the course's group sets and groups",
	Subcommands: []cli.Command{
		{
			Name:   "sets",
			Usage:  "Lists the group categories of the course",
			Flags:  []cli.Flag{outputFlag},
			Action: listGroupCategories,
		},
		{
			Name:      "create-set",
			Usage:     "Creates a group category",
			ArgsUsage: "NAME",
			Action:    createGroupCategory,
		},
		{
			Name:   "list",
			Usage:  "Lists the groups of a category",
			Flags:  []cli.Flag{categoryFlag, outputFlag},
			Action: listGroups,
		},
		{
			Name:      "create",
			Usage:     "Creates groups in a category, skipping names already taken",
			ArgsUsage: "NAME...",
			Flags:     []cli.Flag{categoryFlag},
			Action:    createGroups,
		},
		{
			Name:   "clear",
			Usage:  "Deletes every group in a category",
			Flags:  []cli.Flag{categoryFlag},
			Action: clearGroups,
		},
	},
}

func listGroupCategories(c *cli.Context) error {
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	cats, err := cl.ListGroupCategories(context.Background())
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		info("no group categories found")
		return nil
	}
	t := tabular.New("id", "name")
	for _, cat := range cats {
		t.Append(strconv.FormatInt(cat.ID, 10), cat.Name)
	}
	return t.WriteFile(c.String("output"))
}

func createGroupCategory(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("a category name argument is required")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	cat, err := cl.CreateGroupCategory(context.Background(), name)
	if err != nil {
		return err
	}
	info("Group category %s created with ID %d", cat.Name, cat.ID)
	return nil
}

func listGroups(c *cli.Context) error {
	cid := c.Int64("category")
	if cid == 0 {
		return fmt.Errorf("a category id is required, pass --category")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	groups, err := cl.ListGroups(context.Background(), cid)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		info("no groups in category %d", cid)
		return nil
	}
	t := tabular.New("id", "name", "members_count")
	for _, g := range groups {
		t.Append(strconv.FormatInt(g.ID, 10), g.Name, strconv.Itoa(g.MembersCount))
	}
	return t.WriteFile(c.String("output"))
}

func createGroups(c *cli.Context) error {
	cid := c.Int64("category")
	if cid == 0 {
		return fmt.Errorf("a category id is required, pass --category")
	}
	names := c.Args()
	if len(names) == 0 {
		return fmt.Errorf("at least one group name argument is required")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	created, err := cl.CreateGroups(context.Background(), cid, names)
	for _, g := range created {
		info("Group %s created with ID %d", g.Name, g.ID)
	}
	return err
}

func clearGroups(c *cli.Context) error {
	cid := c.Int64("category")
	if cid == 0 {
		return fmt.Errorf("a category id is required, pass --category")
	}
	cl, err := loadClient(c)
	if err != nil {
		return err
	}
	if err := cl.DeleteAllGroups(context.Background(), cid); err != nil {
		return err
	}
	info("Removed all groups from category %d", cid)
	return nil
}
