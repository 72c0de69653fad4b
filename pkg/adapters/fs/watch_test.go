package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/core"
)

func nextEvent(t *testing.T, ch <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func TestWatch_ReportsSnapshotChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := NewRepository(Config{Path: t.TempDir()})
	require.NoError(t, repo.Initialize(ctx))

	events, err := repo.Watch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.State().(RepositoryState).WatchedUsers)

	require.NoError(t, repo.Write(ctx, "u1", core.Document{}))
	e := nextEvent(t, events)
	assert.Equal(t, core.EventCreate, e.Type)
	assert.Equal(t, "u1", e.UserID)

	require.NoError(t, repo.Write(ctx, "u1", core.Document{GroupOrder: []string{}}))
	assert.Equal(t, core.EventModify, nextEvent(t, events).Type)

	require.NoError(t, os.Remove(repo.snapshotPath("u1", ".json")))
	assert.Equal(t, core.EventDelete, nextEvent(t, events).Type)

	cancel()
	closed := make(chan struct{})
	go func() {
		for range events {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(6 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestWatch_IgnoresOtherUsersAndFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := NewRepository(Config{Path: t.TempDir()})
	require.NoError(t, repo.Initialize(ctx))

	events, err := repo.Watch(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, repo.Write(ctx, "u2", core.Document{}))
	require.NoError(t, os.WriteFile(filepath.Join(repo.userDir("u1"), "notes.txt"), []byte("x"), 0o644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_ReadOnlyMissingUser(t *testing.T) {
	repo := NewRepository(Config{Path: t.TempDir(), ReadOnly: true})
	_, err := repo.Watch(context.Background(), "u1")
	assert.Error(t, err)
}

func TestShouldIgnore(t *testing.T) {
	repo := NewRepository(Config{Path: "/vault"})
	w := newWatchWorker(repo, "u1", nil)
	dir := repo.userDir("u1")

	assert.True(t, w.shouldIgnore(fsnotify.Event{Name: filepath.Join(dir, TempFilePrefix+"42"), Op: fsnotify.Create}))
	assert.True(t, w.shouldIgnore(fsnotify.Event{Name: filepath.Join(dir, "data.txt"), Op: fsnotify.Write}))
	assert.True(t, w.shouldIgnore(fsnotify.Event{Name: filepath.Join(dir, "data.json"), Op: fsnotify.Chmod}))
	assert.False(t, w.shouldIgnore(fsnotify.Event{Name: filepath.Join(dir, "data.json"), Op: fsnotify.Write}))
	assert.False(t, w.shouldIgnore(fsnotify.Event{Name: filepath.Join(dir, "data.yml"), Op: fsnotify.Create}))
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var got []core.Event
	record := func(e core.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	}

	d.add("u1", core.Event{Type: core.EventCreate, UserID: "u1"}, record)
	d.add("u1", core.Event{Type: core.EventModify, UserID: "u1"}, record)
	d.add("u2", core.Event{Type: core.EventDelete, UserID: "u2"}, record)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	d.stopAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	types := map[string]core.EventType{}
	for _, e := range got {
		types[e.UserID] = e.Type
	}
	assert.Equal(t, core.EventCreate, types["u1"])
	assert.Equal(t, core.EventDelete, types["u2"])
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	fired := false
	d.add("u1", core.Event{Type: core.EventModify}, func(core.Event) { fired = true })
	d.stopAndWait(time.Second)
	d.add("u1", core.Event{Type: core.EventModify}, func(core.Event) { fired = true })
	assert.False(t, fired)
}
