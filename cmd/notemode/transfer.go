package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/transfer"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <group>",
	Short: "Write a group's notes to <name>-notes.json (or --out, '-' for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			f, _ := transfer.Export(s.store, g.ID)

			if exportOut == "-" {
				return transfer.Write(cmd.OutOrStdout(), f)
			}
			path := exportOut
			if path == "" {
				path = transfer.FileName(g.Name)
			}
			out, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := transfer.Write(out, f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes to %s\n", len(f.Notes), abs)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <group> <file>",
	Short: "Add the notes of an export file to a group ('-' reads stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			n, err := transfer.Import(s.store, g.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d notes into %q\n", n, g.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
}
