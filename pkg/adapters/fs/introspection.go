package fs

import (
	"maps"
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

var (
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)

// RepositoryState is the observable state of a vault.
type RepositoryState struct {
	Path          string     `json:"path"`
	Format        string     `json:"format"`
	ReadOnly      bool       `json:"read_only"`
	Strict        bool       `json:"strict"`
	Serializers   []string   `json:"serializers"`
	WatchedUsers  []string   `json:"watched_users,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
	Writes        int        `json:"writes"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
}

func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := RepositoryState{
		Path:          r.Path,
		Format:        r.ext,
		ReadOnly:      r.readOnly,
		Strict:        r.config.Strict,
		Serializers:   slices.Sorted(maps.Keys(r.serializers)),
		WatchedUsers:  slices.Sorted(maps.Keys(r.watchers)),
		WatcherActive: len(r.watchers) > 0,
		Writes:        r.writes,
	}
	if !r.lastWrite.IsZero() {
		last := r.lastWrite
		st.LastWrite = &last
	}
	return st
}

func (r *Repository) ComponentType() string {
	return "fs-repository"
}

// trackWatcher adjusts the number of live watch workers for userID.
func (r *Repository) trackWatcher(userID string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchers == nil {
		r.watchers = make(map[string]int)
	}
	if n := r.watchers[userID] + delta; n > 0 {
		r.watchers[userID] = n
	} else {
		delete(r.watchers, userID)
	}
}
