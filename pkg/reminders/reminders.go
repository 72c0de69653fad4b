// Package reminders nudges the user to write: a daily reminder at a fixed
// time and a periodic check for groups that have gone quiet.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/monodeaf/notemode/pkg/core"
)

// GroupCheckInterval is how often inactive groups are looked for.
const GroupCheckInterval = 24 * time.Hour

// Settings mirror the user's notification preferences.
type Settings struct {
	Enabled                 bool   `mapstructure:"enabled" json:"enabled"`
	DailyReminder           bool   `mapstructure:"daily_reminder" json:"dailyReminder"`
	ReminderTime            string `mapstructure:"reminder_time" json:"reminderTime"` // "HH:MM", local time
	GroupReminders          bool   `mapstructure:"group_reminders" json:"groupReminders"`
	InactivityThresholdDays int    `mapstructure:"inactivity_threshold_days" json:"inactivityThreshold"`
}

// DefaultSettings has everything switched off, a 09:00 reminder time and a
// seven-day inactivity threshold.
func DefaultSettings() Settings {
	return Settings{
		ReminderTime:            "09:00",
		InactivityThresholdDays: 7,
	}
}

// ParseReminderTime splits "HH:MM" into hour and minute.
func ParseReminderTime(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("reminder time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("reminder time %q: bad hour", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("reminder time %q: bad minute", s)
	}
	return hour, minute, nil
}

// NextDailyReminder returns the first reminder time strictly after now, in
// now's location.
func NextDailyReminder(now time.Time, settings Settings) (time.Time, error) {
	hour, minute, err := ParseReminderTime(settings.ReminderTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return next, nil
}

// InactiveGroup is a group whose newest note is older than the threshold.
type InactiveGroup struct {
	GroupID  string
	Name     string
	LastNote time.Time
	Idle     time.Duration
}

// InactiveGroups lists, in display order, the groups whose newest note was
// created at least thresholdDays before now. Groups without notes are
// never reported.
func InactiveGroups(s *core.Store, thresholdDays int, now time.Time) []InactiveGroup {
	threshold := time.Duration(thresholdDays) * 24 * time.Hour
	var out []InactiveGroup
	for _, g := range s.Groups() {
		var last time.Time
		for _, n := range g.Notes {
			if n.CreatedAt.After(last) {
				last = n.CreatedAt
			}
		}
		if last.IsZero() {
			continue
		}
		if idle := now.Sub(last); idle >= threshold {
			out = append(out, InactiveGroup{GroupID: g.ID, Name: g.Name, LastNote: last, Idle: idle})
		}
	}
	return out
}

// Notification is a message for the user.
type Notification struct {
	Title string
	Body  string
}

// Notifier delivers notifications (desktop, log, chat...).
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// DailyNotification is sent at the reminder time.
func DailyNotification() Notification {
	return Notification{Title: "Daily Reminder", Body: "Time to write some notes! 😁"}
}

// GroupNotification is sent for an inactive group.
func GroupNotification(name string) Notification {
	return Notification{
		Title: "Group Reminder",
		Body:  fmt.Sprintf("You haven't added notes to %q in a while! 👀", name),
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now and time.After, for tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
		if after != nil {
			s.after = after
		}
	}
}

// Scheduler fires reminders according to Settings.
type Scheduler struct {
	store    *core.Store
	settings Settings
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

// NewScheduler creates a scheduler reading groups from store.
func NewScheduler(store *core.Store, settings Settings, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		settings: settings,
		notifier: notifier,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is done. Group checks run immediately and then
// every GroupCheckInterval. With reminders disabled it returns at once.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.settings.Enabled || (!s.settings.DailyReminder && !s.settings.GroupReminders) {
		return nil
	}

	var daily, groups <-chan time.Time
	if s.settings.DailyReminder {
		next, err := s.scheduleDaily()
		if err != nil {
			return err
		}
		daily = next
	}
	if s.settings.GroupReminders {
		s.checkGroups(ctx)
		groups = s.after(GroupCheckInterval)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-daily:
			s.notify(ctx, DailyNotification())
			next, err := s.scheduleDaily()
			if err != nil {
				return err
			}
			daily = next
		case <-groups:
			s.checkGroups(ctx)
			groups = s.after(GroupCheckInterval)
		}
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start(ctx context.Context) {
	lifecycle.Go(ctx, s.Run, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("reminder scheduler stopped", "error", err)
	}))
}

func (s *Scheduler) scheduleDaily() (<-chan time.Time, error) {
	now := s.now()
	next, err := NextDailyReminder(now, s.settings)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("daily reminder scheduled", "at", next)
	return s.after(next.Sub(now)), nil
}

func (s *Scheduler) checkGroups(ctx context.Context) {
	for _, g := range InactiveGroups(s.store, s.settings.InactivityThresholdDays, s.now()) {
		s.notify(ctx, GroupNotification(g.Name))
	}
}

func (s *Scheduler) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
