package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/pkg/core"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Writing activity derived from note creation times",
}

// dayView is the JSON shape of a DayStat.
type dayView struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Total   int    `json:"total"`
}

func printDays(w io.Writer, days []core.DayStat) error {
	if asJSON {
		views := make([]dayView, 0, len(days))
		for _, d := range days {
			views = append(views, dayView{Date: d.Date.Format(core.DateKeyLayout), Created: d.Created, Total: d.Total})
		}
		return printJSON(w, views)
	}
	for _, d := range days {
		fmt.Fprintf(w, "%s %s  %3d  %s\n",
			d.Date.Format(core.DateKeyLayout), d.Date.Weekday().String()[:3], d.Created, strings.Repeat("#", d.Created))
	}
	return nil
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Notes created per day over the last --days days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return printDays(cmd.OutOrStdout(), s.store.DailyStats(statsDays))
		})
	},
}

var statsGroupCmd = &cobra.Command{
	Use:   "group <group>",
	Short: "Daily counts restricted to one group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			days, _ := s.store.GroupStats(g.ID, statsDays)
			return printDays(cmd.OutOrStdout(), days)
		})
	},
}

var statsTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Totals, busiest weekday, peak hours and the longest streak",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			st := s.store.TotalStats()
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, st)
			}
			fmt.Fprintf(w, "total notes:     %d\n", st.Total)
			fmt.Fprintf(w, "most active day: %s\n", st.MostActiveDay)
			fmt.Fprintf(w, "peak time:       %s\n", st.PeakActivityTime)
			fmt.Fprintf(w, "longest streak:  %d days\n", st.LongestStreak)
			fmt.Fprintln(w, "by hour:")
			for b, n := range st.HourlyActivity {
				fmt.Fprintf(w, "  %-13s %3d\n", core.BucketLabel(b), n)
			}
			fmt.Fprintln(w, "by weekday:")
			for d, n := range st.WeekdayActivity {
				fmt.Fprintf(w, "  %-13s %3d\n", time.Weekday(d), n)
			}
			return nil
		})
	},
}

var statsEditsCmd = &cobra.Command{
	Use:   "edits <group>",
	Short: "Content size statistics of one group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			g, err := resolveGroup(s.store, args[0])
			if err != nil {
				return err
			}
			st, _ := s.store.GroupEditStats(g.ID)
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, st)
			}
			fmt.Fprintf(w, "characters:         %d\n", st.TotalCharacters)
			fmt.Fprintf(w, "average per note:   %d\n", st.AverageCharactersPerNote)
			for _, p := range st.EditHistory {
				fmt.Fprintf(w, "  %s %6d\n", p.Date, p.Characters)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsDailyCmd, statsGroupCmd, statsTotalCmd, statsEditsCmd)
	for _, c := range []*cobra.Command{statsDailyCmd, statsGroupCmd} {
		c.Flags().IntVar(&statsDays, "days", 7, "Number of days, today included")
	}
}
