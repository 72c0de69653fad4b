package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/core"
	"github.com/monodeaf/notemode/pkg/query"
)

var (
	noteContent string
	noteFile    string
)

var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"notes"},
	Short:   "Add, read, edit and find notes",
}

// noteView is the JSON shape of a note.
type noteView struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId,omitempty"`
	Group     string `json:"group,omitempty"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	Content   string `json:"content,omitempty"`
}

func viewOf(ref core.NoteRef, withContent bool) noteView {
	v := noteView{
		ID:        ref.Note.ID,
		GroupID:   ref.GroupID,
		Group:     ref.GroupName,
		Title:     ref.Note.Title,
		CreatedAt: core.FormatTimestamp(ref.Note.CreatedAt),
	}
	if withContent {
		v.Content = ref.Note.Content
	}
	return v
}

func printRefs(cmd *cobra.Command, refs []core.NoteRef) error {
	if asJSON {
		views := make([]noteView, 0, len(refs))
		for _, r := range refs {
			views = append(views, viewOf(r, false))
		}
		return printJSON(cmd.OutOrStdout(), views)
	}
	for _, r := range refs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-16s %s\n",
			r.Note.ID, r.Note.CreatedAt.Format(time.DateTime), r.GroupName, r.Note.Title)
	}
	return nil
}

func refsOf(g core.Group, notes []core.Note) []core.NoteRef {
	refs := make([]core.NoteRef, 0, len(notes))
	for _, n := range notes {
		refs = append(refs, core.NoteRef{GroupID: g.ID, GroupName: g.Name, Note: n})
	}
	return refs
}

var noteAddCmd = &cobra.Command{
	Use:   "add <group> <title>",
	Short: "Create a note; a same-title note created moments ago is returned instead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			n, ok := s.store.CreateNote(g.ID, args[1])
			if !ok {
				return fmt.Errorf("group %q not found", args[0])
			}
			if content != "" {
				s.store.SaveNoteContent(g.ID, n.ID, content)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		})
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list [group]",
	Short: "List the notes of a group (newest first) or of every group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			if len(args) == 0 {
				return printRefs(cmd, s.store.AllNotes())
			}
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			return printRefs(cmd, refsOf(g, s.store.Notes(g.ID)))
		})
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <group> <note>",
	Short: "Print the content of a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			n, err := resolveNote(s.store, g.ID, args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), viewOf(core.NoteRef{GroupID: g.ID, GroupName: g.Name, Note: n}, true))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n\n%s\n", n.Title, n.CreatedAt.Format(time.DateTime), n.Content)
			return nil
		})
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <group> <note>",
	Short: "Replace the content of a note (--content or --file, '-' for stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("content") && noteFile == "" {
			return errors.New("pass --content or --file")
		}
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			n, err := resolveNote(s.store, g.ID, args[1])
			if err != nil {
				return err
			}
			s.store.SaveNoteContent(g.ID, n.ID, content)
			return nil
		})
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <group> <note>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			n, err := resolveNote(s.store, g.ID, args[1])
			if err != nil {
				return err
			}
			s.store.DeleteNote(g.ID, n.ID)
			return nil
		})
	},
}

var noteSearchCmd = &cobra.Command{
	Use:   "search <group> <text>",
	Short: "Case-insensitive search of titles and content within a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			return printRefs(cmd, refsOf(g, s.store.Search(g.ID, args[1])))
		})
	},
}

var noteFindCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "Find notes whose title matches a glob pattern, e.g. 'meeting-*'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			refs, err := s.store.FindByTitle(args[0])
			if err != nil {
				return err
			}
			return printRefs(cmd, refs)
		})
	},
}

var noteQueryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Filter notes with an expression, e.g. 'group == \"Work\" && hour >= 18'",
	Long: `Filter every note of the user with an expression. Available fields:
title, content, group, groupId, createdAt, date (YYYY-MM-DD), hour,
weekday ("Monday"...) and length (characters of content).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := query.Compile(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			refs, err := q.Filter(s.store.AllNotes())
			if err != nil {
				return err
			}
			return printRefs(cmd, refs)
		})
	},
}

func readContent(cmd *cobra.Command) (string, error) {
	switch noteFile {
	case "":
		return noteContent, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(noteFile)
	return string(data), err
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteShowCmd, noteEditCmd, noteDeleteCmd,
		noteSearchCmd, noteFindCmd, noteQueryCmd)

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVar(&noteContent, "content", "", "Note content (HTML)")
		c.Flags().StringVar(&noteFile, "file", "", "Read content from a file, '-' for stdin")
	}
}
