package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/monodeaf/notemode/pkg/core"
)

// DebounceWindow is how long a user's snapshot must be quiet before a
// change is reported.
const DebounceWindow = 50 * time.Millisecond

// Watch implements core.Watchable. It reports changes to the snapshot of
// userID until ctx is done, then closes the channel.
func (r *Repository) Watch(ctx context.Context, userID string) (<-chan core.Event, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	dir := r.userDir(userID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if r.isReadOnly() {
			return nil, fmt.Errorf("no data directory for user %s", userID)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create user directory: %w", err)
		}
	}

	events := make(chan core.Event, 16)
	w := newWatchWorker(r, userID, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := w.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(r.handleError))

	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	repo      *Repository
	userID    string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	exists    atomic.Bool
}

func newWatchWorker(repo *Repository, userID string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		repo:       repo,
		userID:     userID,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.repo.userDir(w.userID)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch user directory: %w", err)
	}

	w.exists.Store(w.snapshotExists())
	w.watcher = watcher
	w.debouncer = newDebouncer(DebounceWindow)
	w.repo.trackWatcher(w.userID, 1)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"user":              w.userID,
		}
	})
}

func (w *watchWorker) snapshotExists() bool {
	for ext := range w.repo.serializers {
		if _, err := os.Stat(w.repo.snapshotPath(w.userID, ext)); err == nil {
			return true
		}
	}
	return false
}

// shouldIgnore filters temp files from atomic writes, unrelated files and
// permission-only changes.
func (w *watchWorker) shouldIgnore(event fsnotify.Event) bool {
	if isTempFile(event.Name) {
		return true
	}
	if !w.repo.isSnapshotFile(event.Name) {
		return true
	}
	return event.Op == fsnotify.Chmod
}

// mapEventType turns a raw notification into a snapshot event. Atomic
// saves surface as a create on the target name, so a create over an
// existing snapshot is a modification.
func (w *watchWorker) mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		if w.exists.Swap(true) {
			return core.EventModify
		}
		return core.EventCreate
	case event.Has(fsnotify.Write):
		w.exists.Store(true)
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.snapshotExists() {
			return ""
		}
		w.exists.Store(false)
		return core.EventDelete
	}
	return ""
}

func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.repo.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if w.shouldIgnore(event) {
		return false
	}

	eType := w.mapEventType(event)
	if eType == "" {
		return false
	}

	w.sendEvent(ctx, core.Event{
		Type:      eType,
		UserID:    w.userID,
		Timestamp: time.Now().Unix(),
	})
	return true
}

// sendEvent enqueues an event via the debouncer, protecting against channel
// closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event.UserID, event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) handleWatcherError(err error) {
	w.repo.config.Logger.Error("fsnotify error", "error", err)
	if w.repo.config.ErrorHandler != nil {
		w.repo.config.ErrorHandler(err)
	}
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.repo.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.repo.trackWatcher(w.userID, -1)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// In-flight timers must finish before the owner closes the events channel.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}

func (r *Repository) handleError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("watch error", "error", err)
}
