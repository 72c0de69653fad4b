package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/adapters/lifecycle"
	"github.com/monodeaf/notemode/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes made to the user's snapshot by other writers",
	Long: `Print an event whenever another process or device changes the
snapshot of the user, reloading it each time. Stops on Ctrl+C.
Supported by the fs and firestore adapters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			ctx := cmd.Context()
			events, err := s.store.Watch(ctx)
			if err != nil {
				return err
			}

			src := lifecycle.NewSource(events, lifecycle.ForUser(s.store.User()))
			if err := src.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (%s)\n", s.store.User(), cfg.Adapter)

			for e := range src.Events() {
				ev, ok := e.(core.Event)
				if !ok {
					continue
				}
				if err := s.store.Reload(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload after %s failed: %v\n", ev, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s groups=%d\n",
					core.FormatTimestamp(ev.Timestamp), ev, len(s.store.GroupOrder()))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
