package firebase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/monodeaf/notemode/pkg/core"
)

// FirestoreRepository implements core.Repository with one Firestore
// document per user in Config.Collection.
type FirestoreRepository struct {
	config Config
	client *firestore.Client

	mu       sync.Mutex
	writes   int
	watchers int
}

// NewFirestoreRepository wraps a Firestore client.
func NewFirestoreRepository(client *firestore.Client, cfg Config) *FirestoreRepository {
	return &FirestoreRepository{config: cfg.withDefaults(), client: client}
}

func (r *FirestoreRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(r.config.Collection).Doc(userID)
}

// Read implements core.Repository.
func (r *FirestoreRepository) Read(ctx context.Context, userID string) (*core.Document, error) {
	if err := validateKey(userID); err != nil {
		return nil, err
	}

	snap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore: read %s: %w", userID, err)
	}

	var doc core.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore: decode snapshot of %s: %w", userID, err)
	}
	return &doc, nil
}

// Write implements core.Repository. Set without merge replaces the whole
// document, matching snapshot semantics.
func (r *FirestoreRepository) Write(ctx context.Context, userID string, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := validateKey(userID); err != nil {
		return err
	}

	if _, err := r.doc(userID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore: write %s: %w", userID, err)
	}

	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	r.config.Logger.Debug("snapshot written", "user", userID, "backend", "firestore")
	return nil
}

// ListUsers implements core.UserLister.
func (r *FirestoreRepository) ListUsers(ctx context.Context) ([]string, error) {
	it := r.client.Collection(r.config.Collection).DocumentRefs(ctx)
	var users []string
	for {
		ref, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: list users: %w", err)
		}
		users = append(users, ref.ID)
	}
	sort.Strings(users)
	return users, nil
}

// Watch implements core.Watchable with a snapshot listener. The initial
// snapshot is consumed silently; later ones become events.
func (r *FirestoreRepository) Watch(ctx context.Context, userID string) (<-chan core.Event, error) {
	if err := validateKey(userID); err != nil {
		return nil, err
	}

	it := r.doc(userID).Snapshots(ctx)
	first, err := it.Next()
	if err != nil {
		it.Stop()
		return nil, fmt.Errorf("firestore: watch %s: %w", userID, err)
	}

	r.setWatching(1)
	events := make(chan core.Event, 16)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer it.Stop()
		defer r.setWatching(-1)

		existed := first.Exists()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return nil
				}
				return fmt.Errorf("firestore: watch %s: %w", userID, err)
			}

			e := core.Event{Type: core.EventModify, UserID: userID, Timestamp: time.Now().Unix()}
			switch {
			case !snap.Exists():
				e.Type = core.EventDelete
			case !existed:
				e.Type = core.EventCreate
			}
			existed = snap.Exists()

			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		r.config.Logger.Error("firestore watch stopped", "user", userID, "error", err)
	}))

	return events, nil
}

func (r *FirestoreRepository) setWatching(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers += delta
}

// FirestoreState exposes internal state for observability.
type FirestoreState struct {
	ProjectID  string `json:"project_id"`
	Collection string `json:"collection"`
	ReadOnly   bool   `json:"read_only"`
	Writes     int    `json:"writes"`
	Watchers   int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *FirestoreRepository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return FirestoreState{
		ProjectID:  r.config.ProjectID,
		Collection: r.config.Collection,
		ReadOnly:   r.config.ReadOnly,
		Writes:     r.writes,
		Watchers:   r.watchers,
	}
}

// ComponentType implements introspection.Component.
func (r *FirestoreRepository) ComponentType() string {
	return "firestore-repository"
}

var (
	_ core.Repository = (*FirestoreRepository)(nil)
	_ core.UserLister = (*FirestoreRepository)(nil)
	_ core.Watchable  = (*FirestoreRepository)(nil)

	_ introspection.Introspectable = (*FirestoreRepository)(nil)
	_ introspection.Component      = (*FirestoreRepository)(nil)
)

// Close releases the Firestore client.
func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}
