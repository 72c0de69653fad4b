package fs

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/core"
)

func watcherActive(repo *Repository) func() bool {
	return func() bool {
		state, ok := repo.State().(RepositoryState)
		return ok && state.WatcherActive
	}
}

// A watcher that loses its fsnotify handle fails, and a supervisor running
// it under RestartOnFailure brings up a fresh worker that keeps reporting
// changes to the same user's snapshot.
func TestWatchWorker_RestartedBySupervisor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := NewRepository(Config{Path: t.TempDir()})
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Write(ctx, "u1", core.Document{}))

	events := make(chan core.Event, 4)
	workers := make(chan *watchWorker, 4)

	sup := supervisor.New("notes-watch", supervisor.StrategyOneForOne, supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			w := newWatchWorker(repo, "u1", events)
			workers <- w
			return w, nil
		},
		RestartPolicy: supervisor.RestartOnFailure,
		Backoff: supervisor.Backoff{
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2,
			ResetDuration:   100 * time.Millisecond,
			MaxRestarts:     3,
			MaxDuration:     time.Second,
		},
	})
	require.NoError(t, sup.Start(ctx))

	var first *watchWorker
	select {
	case first = <-workers:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never built a watcher")
	}
	require.Eventually(t, watcherActive(repo), 2*time.Second, 10*time.Millisecond)

	require.NoError(t, first.watcher.Close())

	var second *watchWorker
	select {
	case second = <-workers:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was not restarted")
	}
	assert.NotSame(t, first, second)
	require.Eventually(t, watcherActive(repo), 2*time.Second, 10*time.Millisecond)

	require.NoError(t, repo.Write(ctx, "u1", core.Document{GroupOrder: []string{}}))
	e := nextEvent(t, events)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, core.EventModify, e.Type)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, sup.Stop(stopCtx))
}
