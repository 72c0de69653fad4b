package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/core"
)

var (
	bgColor string
	bgImage string
)

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"groups"},
	Short:   "Create, list, rename, reorder and delete groups",
}

// groupView is the JSON shape of a group listing.
type groupView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Background core.Background `json:"background"`
	Notes      int             `json:"notes"`
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			groups := s.store.Groups()
			if asJSON {
				views := make([]groupView, 0, len(groups))
				for _, g := range groups {
					views = append(views, groupView{ID: g.ID, Name: g.Name, Background: g.Background, Notes: len(g.Notes)})
				}
				return printJSON(cmd.OutOrStdout(), views)
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %3d notes  %s:%s\n",
					g.ID, g.Name, len(g.Notes), g.Background.Kind, g.Background.Value)
			}
			return nil
		})
	},
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group at the front of the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bg, err := backgroundFromFlags()
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			g := s.store.CreateGroup(args[0], bg)
			fmt.Fprintln(cmd.OutOrStdout(), g.ID)
			return nil
		})
	},
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename <group> <new-name>",
	Short: "Rename a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			s.store.RenameGroup(g.ID, args[1])
			return nil
		})
	},
}

var groupMoveCmd = &cobra.Command{
	Use:       "move <group> <left|right>",
	Short:     "Swap a group with its neighbour",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(core.Left), string(core.Right)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := core.ParseDirection(args[1])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			if !s.store.MoveGroup(g.ID, dir) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%q is already at the %s end\n", g.Name, dir)
			}
			return nil
		})
	},
}

var groupBackgroundCmd = &cobra.Command{
	Use:   "background <group>",
	Short: "Change the background of a group (--color or --image)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bg, err := backgroundFromFlags()
		if err != nil {
			return err
		}
		if bg.IsZero() {
			return errors.New("pass --color or --image")
		}
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			s.store.SetGroupBackground(g.ID, bg)
			return nil
		})
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <group>",
	Short: "Delete a group and all of its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			s.store.DeleteGroup(g.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q (%d notes)\n", g.Name, len(g.Notes))
			return nil
		})
	},
}

func backgroundFromFlags() (core.Background, error) {
	switch {
	case bgColor != "" && bgImage != "":
		return core.Background{}, errors.New("--color and --image are exclusive")
	case bgColor != "":
		return core.Background{Kind: core.BackgroundColor, Value: bgColor}, nil
	case bgImage != "":
		return core.Background{Kind: core.BackgroundImage, Value: bgImage}, nil
	}
	return core.Background{}, nil
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd, groupCreateCmd, groupRenameCmd, groupMoveCmd, groupBackgroundCmd, groupDeleteCmd)

	for _, c := range []*cobra.Command{groupCreateCmd, groupBackgroundCmd} {
		c.Flags().StringVar(&bgColor, "color", "", "Background color, e.g. #ffcc00")
		c.Flags().StringVar(&bgImage, "image", "", "Background image URL")
	}
}
