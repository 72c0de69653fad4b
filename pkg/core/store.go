package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
)

// DefaultDedupWindow is how close two same-title notes must be created for
// the second CreateNote to return the first.
const DefaultDedupWindow = time.Second

// StoreConfig holds the configuration for a Store. Zero values get defaults.
type StoreConfig struct {
	Logger      *slog.Logger
	Clock       func() time.Time
	NewID       func() string
	Location    *time.Location // calendar used by statistics; defaults to time.Local
	DedupWindow time.Duration
	// Context bounds background snapshot writes. Defaults to context.Background().
	Context context.Context
}

// Store owns the groups, notes and group order of the bound user. Every
// mutation happens in memory first and is then persisted as a whole snapshot
// without blocking the caller.
type Store struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	loc    *time.Location
	dedup  time.Duration
	ctx    context.Context

	mu         sync.RWMutex
	userID     string
	generation uint64
	groups     map[string]*Group
	order      []string
	revision   uint64

	writeMu sync.Mutex
	written map[string]uint64 // last revision written per user
	pending sync.WaitGroup
}

// NewStore creates a Store backed by repo. No user is bound yet.
func NewStore(repo Repository, cfg StoreConfig) *Store {
	s := &Store{
		repo:   repo,
		logger: cfg.Logger,
		now:    cfg.Clock,
		newID:  cfg.NewID,
		loc:    cfg.Location,
		dedup:  cfg.DedupWindow,
		ctx:    cfg.Context,
		groups: make(map[string]*Group),
		order:  []string{},
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewID
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.dedup <= 0 {
		s.dedup = DefaultDedupWindow
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	return s
}

// NewID returns a time-ordered UUID (v7). Its embedded counter keeps ids
// unique under rapid creation in the same millisecond.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// User returns the bound user id, or "" when none.
func (s *Store) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetUser binds userID and loads its snapshot. Switching from another user
// wipes the in-memory state first so it can never be saved under the new id.
// If that first load fails with a *LoadError the store is left unbound, so
// later mutations stay local instead of overwriting the user's snapshot
// with an empty one. An empty userID is equivalent to ClearUser.
func (s *Store) SetUser(ctx context.Context, userID string) error {
	if userID == "" {
		s.ClearUser()
		return nil
	}

	s.mu.Lock()
	switched := s.userID != userID
	if switched {
		s.groups = make(map[string]*Group)
		s.order = []string{}
	}
	s.userID = userID
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.logger.Debug("user bound", "user", userID)
	err := s.Load(ctx)

	var loadErr *LoadError
	if switched && errors.As(err, &loadErr) {
		s.mu.Lock()
		if s.generation == gen {
			s.userID = ""
			s.generation++
			s.logger.Warn("user unbound after failed load", "user", userID)
		}
		s.mu.Unlock()
	}
	return err
}

// ClearUser unbinds the user and wipes groups and order immediately.
func (s *Store) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.generation++
	s.groups = make(map[string]*Group)
	s.order = []string{}
	s.logger.Debug("user cleared")
}

// Load replaces the in-memory state with the bound user's persisted snapshot.
// Failures are returned as *LoadError and leave the state untouched. A
// result that arrives after the bound user changed is dropped with
// ErrStaleLoad.
func (s *Store) Load(ctx context.Context) error {
	s.mu.RLock()
	userID, gen := s.userID, s.generation
	s.mu.RUnlock()

	if userID == "" {
		return &LoadError{Err: ErrNoUser}
	}

	doc, err := s.repo.Read(ctx, userID)
	if err != nil {
		s.logger.Error("error loading user data", "user", userID, "error", err)
		return &LoadError{UserID: userID, Err: err}
	}

	groups, order, err := decodeDocument(doc, s.loc)
	if err != nil {
		s.logger.Error("error decoding user data", "user", userID, "error", err)
		return &LoadError{UserID: userID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale load", "user", userID)
		return ErrStaleLoad
	}
	s.groups = groups
	s.order = order
	s.logger.Info("user data loaded", "user", userID, "groups", len(groups))
	return nil
}

// Reload is Load for callers reacting to an external change Event.
func (s *Store) Reload(ctx context.Context) error {
	err := s.Load(ctx)
	if errors.Is(err, ErrStaleLoad) {
		return nil
	}
	return err
}

// Save writes the full snapshot and waits for the write. It is a no-op
// without a bound user. Write failures are logged, never returned: the
// in-memory state stays authoritative.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	job, ok := s.snapshotLocked()
	s.mu.Unlock()
	if ok {
		s.write(ctx, job)
	}
	return nil
}

// Flush blocks until every background write started so far has finished.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watch forwards change events for the bound user when the repository can
// observe other writers.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	userID := s.User()
	if userID == "" {
		return nil, ErrNoUser
	}
	return w.Watch(ctx, userID)
}

type writeJob struct {
	userID   string
	revision uint64
	doc      Document
}

// snapshotLocked serializes the current state. Callers hold s.mu.
func (s *Store) snapshotLocked() (writeJob, bool) {
	if s.userID == "" {
		return writeJob{}, false
	}
	s.revision++
	return writeJob{
		userID:   s.userID,
		revision: s.revision,
		doc:      encodeDocument(s.groups, s.order),
	}, true
}

// persistAsync fires a background write for a snapshot taken under s.mu.
func (s *Store) persistAsync(job writeJob, ok bool) {
	if !ok {
		return
	}
	s.pending.Add(1)
	lifecycle.Go(s.ctx, func(ctx context.Context) error {
		defer s.pending.Done()
		s.write(ctx, job)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("snapshot writer panic", "user", job.userID, "error", err)
	}))
}

// write persists job unless a newer snapshot of the same user already went
// out, whichever session took it. Revisions grow across sessions and writes
// are serialized, so they land in order.
func (s *Store) write(ctx context.Context, job writeJob) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if job.revision <= s.written[job.userID] {
		s.logger.Debug("skipping superseded snapshot", "user", job.userID, "revision", job.revision)
		return
	}
	if s.written == nil {
		s.written = make(map[string]uint64)
	}
	s.written[job.userID] = job.revision

	if err := s.repo.Write(ctx, job.userID, job.doc); err != nil {
		saveErr := &SaveError{UserID: job.userID, Revision: job.revision, Err: err}
		s.logger.Error("error saving user data", "user", job.userID, "error", saveErr)
		return
	}
	s.logger.Debug("user data saved", "user", job.userID, "revision", job.revision)
}
