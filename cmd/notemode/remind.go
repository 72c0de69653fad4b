package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/core"
	"github.com/monodeaf/notemode/pkg/reminders"
)

var (
	remindOnce bool
	timeNow    = time.Now
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder scheduler configured under 'reminders'",
	Long: `Print a daily reminder at reminders.reminder_time and, once a day, a
reminder for every group without new notes for
reminders.inactivity_threshold_days days. With --once, only list the
inactive groups and exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			settings := cfg.Reminders
			w := cmd.OutOrStdout()

			if remindOnce {
				for _, g := range reminders.InactiveGroups(s.store, settings.InactivityThresholdDays, timeNow()) {
					fmt.Fprintf(w, "%s: last note %s (%d days ago)\n",
						g.Name, g.LastNote.Format(core.DateKeyLayout), int(g.Idle.Hours()/24))
				}
				return nil
			}

			if !settings.Enabled {
				return fmt.Errorf("reminders are disabled; set reminders.enabled or NOTEMODE_REMINDERS=true")
			}
			notifier := reminders.NotifierFunc(func(_ context.Context, n reminders.Notification) error {
				_, err := fmt.Fprintf(w, "[%s] %s\n", n.Title, n.Body)
				return err
			})
			sched := reminders.NewScheduler(s.store, settings, notifier, reminders.WithLogger(slog.Default()))
			return sched.Run(cmd.Context())
		})
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().BoolVar(&remindOnce, "once", false, "List inactive groups and exit")
}
