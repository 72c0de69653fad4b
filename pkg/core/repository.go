package core

import "context"

// Repository is the persistence adapter: an opaque per-user document store.
// Adhering to this interface keeps the Store independent of the backend
// (local files, SQLite, Firebase).
type Repository interface {
	// Read returns the document stored for userID, or nil when the user has none.
	Read(ctx context.Context, userID string) (*Document, error)

	// Write overwrites the whole document stored for userID.
	Write(ctx context.Context, userID string, doc Document) error
}

// Watchable is implemented by repositories that can observe writes made by
// other processes.
type Watchable interface {
	// Watch emits an Event whenever the document of userID changes outside this process.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, userID string) (<-chan Event, error)
}

// UserLister is implemented by repositories that can enumerate stored users.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// Initializer is implemented by repositories that need setup before use
// (directories, schema).
type Initializer interface {
	Initialize(ctx context.Context) error
}
