package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/internal/platform"
	"github.com/monodeaf/notemode/pkg/core"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the users that have a stored snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := platform.Init(cfg.URI(), append(cfg.Options(), platform.WithLogger(slog.Default()))...)
		if err != nil {
			return err
		}
		defer platform.Close(repo)

		lister, ok := repo.(core.UserLister)
		if !ok {
			return fmt.Errorf("the %s adapter cannot list users", cfg.Adapter)
		}
		users, err := lister.ListUsers(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), users)
		}
		for _, u := range users {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
