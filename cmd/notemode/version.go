package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notemode",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notemode version %s\n", strings.TrimSpace(notemode.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
