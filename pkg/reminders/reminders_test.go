package reminders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/adapters/memory"
	"github.com/monodeaf/notemode/pkg/core"
	"github.com/monodeaf/notemode/pkg/reminders"
)

var now = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func TestParseReminderTime(t *testing.T) {
	h, m, err := reminders.ParseReminderTime("07:05")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		_, _, err := reminders.ParseReminderTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextDailyReminder(t *testing.T) {
	settings := reminders.DefaultSettings()

	next, err := reminders.NextDailyReminder(now, settings)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC), next, "09:00 already passed")

	settings.ReminderTime = "18:30"
	next, err = reminders.NextDailyReminder(now, settings)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC), next)

	settings.ReminderTime = "15:00"
	next, err = reminders.NextDailyReminder(now, settings)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 11, 15, 0, 0, 0, time.UTC), next, "exactly now rolls over")
}

func storeWithGroups(t *testing.T) (*core.Store, core.Group, core.Group) {
	t.Helper()
	s := core.NewStore(memory.NewRepository(), core.StoreConfig{Location: time.UTC})
	require.NoError(t, s.SetUser(context.Background(), "u1"))

	stale := s.CreateGroup("Stale", core.Background{})
	fresh := s.CreateGroup("Fresh", core.Background{})
	s.CreateGroup("Empty", core.Background{})
	s.ImportNotes(stale.ID, []core.ImportedNote{
		{Title: "old", CreatedAt: now.AddDate(0, 0, -30)},
		{Title: "newest", CreatedAt: now.AddDate(0, 0, -7)},
	})
	s.ImportNotes(fresh.ID, []core.ImportedNote{
		{Title: "recent", CreatedAt: now.AddDate(0, 0, -1)},
	})
	return s, stale, fresh
}

func TestInactiveGroups(t *testing.T) {
	s, stale, _ := storeWithGroups(t)

	got := reminders.InactiveGroups(s, 7, now)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].GroupID)
	assert.Equal(t, 7*24*time.Hour, got[0].Idle)

	assert.Empty(t, reminders.InactiveGroups(s, 8, now))
	assert.Len(t, reminders.InactiveGroups(s, 1, now), 2)
}

type fakeTimers struct {
	requested chan time.Duration
	fire      chan time.Time
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{requested: make(chan time.Duration, 8), fire: make(chan time.Time)}
}

func (f *fakeTimers) after(d time.Duration) <-chan time.Time {
	f.requested <- d
	return f.fire
}

func TestScheduler_Disabled(t *testing.T) {
	s, _, _ := storeWithGroups(t)
	called := false
	notifier := reminders.NotifierFunc(func(context.Context, reminders.Notification) error {
		called = true
		return nil
	})
	sched := reminders.NewScheduler(s, reminders.DefaultSettings(), notifier)
	assert.NoError(t, sched.Run(context.Background()))
	assert.False(t, called)
}

func TestScheduler_GroupRemindersCheckImmediately(t *testing.T) {
	s, _, _ := storeWithGroups(t)
	got := make(chan reminders.Notification, 4)
	notifier := reminders.NotifierFunc(func(_ context.Context, n reminders.Notification) error {
		got <- n
		return nil
	})
	timers := newFakeTimers()

	settings := reminders.DefaultSettings()
	settings.Enabled = true
	settings.GroupReminders = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	sched := reminders.NewScheduler(s, settings, notifier,
		reminders.WithClock(func() time.Time { return now }, timers.after))
	go func() { done <- sched.Run(ctx) }()

	n := <-got
	assert.Equal(t, reminders.GroupNotification("Stale"), n)
	assert.Equal(t, reminders.GroupCheckInterval, <-timers.requested)

	timers.fire <- now
	assert.Equal(t, reminders.GroupNotification("Stale"), <-got)

	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_DailyReminder(t *testing.T) {
	s, _, _ := storeWithGroups(t)
	got := make(chan reminders.Notification, 4)
	notifier := reminders.NotifierFunc(func(_ context.Context, n reminders.Notification) error {
		got <- n
		return nil
	})
	timers := newFakeTimers()

	settings := reminders.DefaultSettings()
	settings.Enabled = true
	settings.DailyReminder = true
	settings.ReminderTime = "16:30"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	sched := reminders.NewScheduler(s, settings, notifier,
		reminders.WithClock(func() time.Time { return now }, timers.after))
	go func() { done <- sched.Run(ctx) }()

	assert.Equal(t, 90*time.Minute, <-timers.requested)
	timers.fire <- now
	assert.Equal(t, reminders.DailyNotification(), <-got)
	assert.Equal(t, 90*time.Minute, <-timers.requested, "rescheduled")

	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_BadReminderTime(t *testing.T) {
	s, _, _ := storeWithGroups(t)
	settings := reminders.Settings{Enabled: true, DailyReminder: true, ReminderTime: "noon"}
	sched := reminders.NewScheduler(s, settings, reminders.NotifierFunc(func(context.Context, reminders.Notification) error { return nil }))
	assert.Error(t, sched.Run(context.Background()))
}
