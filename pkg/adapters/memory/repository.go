// Package memory provides an in-process core.Repository. It backs tests and
// the "memory" adapter, where nothing outlives the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/monodeaf/notemode/pkg/core"
)

// Repository keeps one document per user in a map. Documents are copied on
// the way in and out so callers never share state with the store.
type Repository struct {
	mu     sync.RWMutex
	docs   map[string]core.Document
	writes int
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{docs: make(map[string]core.Document)}
}

// Read implements core.Repository.
func (r *Repository) Read(ctx context.Context, userID string) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[userID]
	if !ok {
		return nil, nil
	}
	out := doc.Clone()
	return &out, nil
}

// Write implements core.Repository.
func (r *Repository) Write(ctx context.Context, userID string, doc core.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[userID] = doc.Clone()
	r.writes++
	return nil
}

// ListUsers implements core.UserLister.
func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.docs))
	for id := range r.docs {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// Writes returns how many documents were written so far.
func (r *Repository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Users  int `json:"users"`
	Writes int `json:"writes"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{Users: len(r.docs), Writes: r.writes}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory-repository"
}

var (
	_ core.Repository              = (*Repository)(nil)
	_ core.UserLister              = (*Repository)(nil)
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
