package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"firebase.google.com/go/v4/db"
	"github.com/aretw0/introspection"

	"github.com/monodeaf/notemode/pkg/core"
)

// Ref is the subset of *db.Ref the repository needs.
type Ref interface {
	Get(ctx context.Context, v interface{}) error
	GetShallow(ctx context.Context, v interface{}) error
	Set(ctx context.Context, v interface{}) error
}

// RealtimeRepository implements core.Repository on the Firebase Realtime
// Database. The snapshot lives at users/<uid>/data, next to per-user
// settings the web client stores under users/<uid>.
type RealtimeRepository struct {
	config Config
	ref    func(path string) Ref

	mu     sync.Mutex
	writes int
}

// NewRealtimeRepository wraps a Realtime Database client.
func NewRealtimeRepository(client *db.Client, cfg Config) *RealtimeRepository {
	return newRealtimeRepository(func(path string) Ref { return client.NewRef(path) }, cfg)
}

func newRealtimeRepository(ref func(string) Ref, cfg Config) *RealtimeRepository {
	return &RealtimeRepository{config: cfg.withDefaults(), ref: ref}
}

// DataPath is where the snapshot of userID is stored.
func DataPath(userID string) string {
	return "users/" + userID + "/data"
}

// Read implements core.Repository. The database drops empty objects and
// arrays, which decoding in the store tolerates.
func (r *RealtimeRepository) Read(ctx context.Context, userID string) (*core.Document, error) {
	if err := validateKey(userID); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := r.ref(DataPath(userID)).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("firebase: read %s: %w", userID, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var doc core.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("firebase: decode snapshot of %s: %w", userID, err)
	}
	return &doc, nil
}

// Write implements core.Repository by setting the whole data node.
func (r *RealtimeRepository) Write(ctx context.Context, userID string, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := validateKey(userID); err != nil {
		return err
	}

	if err := r.ref(DataPath(userID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firebase: write %s: %w", userID, err)
	}

	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	r.config.Logger.Debug("snapshot written", "user", userID, "backend", "rtdb")
	return nil
}

// ListUsers implements core.UserLister with a shallow read of users/.
func (r *RealtimeRepository) ListUsers(ctx context.Context) ([]string, error) {
	var keys map[string]interface{}
	if err := r.ref("users").GetShallow(ctx, &keys); err != nil {
		return nil, fmt.Errorf("firebase: list users: %w", err)
	}
	users := make([]string, 0, len(keys))
	for id := range keys {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// RealtimeState exposes internal state for observability.
type RealtimeState struct {
	DatabaseURL string `json:"database_url"`
	ReadOnly    bool   `json:"read_only"`
	Writes      int    `json:"writes"`
}

// State implements introspection.Introspectable.
func (r *RealtimeRepository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RealtimeState{
		DatabaseURL: r.config.DatabaseURL,
		ReadOnly:    r.config.ReadOnly,
		Writes:      r.writes,
	}
}

// ComponentType implements introspection.Component.
func (r *RealtimeRepository) ComponentType() string {
	return "firebase-rtdb-repository"
}

var (
	_ core.Repository = (*RealtimeRepository)(nil)
	_ core.UserLister = (*RealtimeRepository)(nil)

	_ introspection.Introspectable = (*RealtimeRepository)(nil)
	_ introspection.Component      = (*RealtimeRepository)(nil)
)
