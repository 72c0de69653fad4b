package notemode

import (
	"context"
	"log/slog"
	"time"

	"github.com/monodeaf/notemode/internal/platform"
	"github.com/monodeaf/notemode/pkg/adapters/firebase"
	"github.com/monodeaf/notemode/pkg/adapters/fs"
	"github.com/monodeaf/notemode/pkg/core"
)

// --- Types ---

// Store is the note store bound to one user at a time.
type Store = core.Store

// Repository is the persistence port implemented by every adapter.
type Repository = core.Repository

// Identity is the owner of a verified Firebase ID token.
type Identity = firebase.Identity

// --- Configuration ---

// Option defines a functional option for configuring notemode.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory    = platform.AdapterMemory
	AdapterFS        = platform.AdapterFS
	AdapterSQLite    = platform.AdapterSQLite
	AdapterFirebase  = platform.AdapterFirebase
	AdapterFirestore = platform.AdapterFirestore
)

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat sets the extension of new fs snapshots (".json" or ".yaml").
func WithFormat(ext string) Option {
	return platform.WithFormat(ext)
}

// WithSerializer registers a custom fs serializer for an extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return platform.WithSerializer(ext, s)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithStrict rejects unknown fields when parsing fs snapshots.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatcherErrorHandler registers a callback for errors in the fs Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithProjectID sets the Google Cloud project of the Firebase backends.
func WithProjectID(id string) Option {
	return platform.WithProjectID(id)
}

// WithCredentialsFile points at a service account key.
func WithCredentialsFile(path string) Option {
	return platform.WithCredentialsFile(path)
}

// WithCredentialsJSONBase64 passes a base64 encoded service account key.
func WithCredentialsJSONBase64(b64 string) Option {
	return platform.WithCredentialsJSONBase64(b64)
}

// WithCollection sets the Firestore collection.
func WithCollection(name string) Option {
	return platform.WithCollection(name)
}

// WithClock replaces time.Now for note creation.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithLocation sets the calendar used by statistics.
func WithLocation(loc *time.Location) Option {
	return platform.WithLocation(loc)
}

// WithDedupWindow sets the same-title duplicate window of CreateNote.
func WithDedupWindow(d time.Duration) Option {
	return platform.WithDedupWindow(d)
}

// WithContext bounds background snapshot writes and adapter setup.
func WithContext(ctx context.Context) Option {
	return platform.WithContext(ctx)
}

// --- Factory ---

// New creates a Store over the adapter selected by opts.
func New(uri string, opts ...Option) (*core.Store, error) {
	return platform.New(uri, opts...)
}

// Init initializes a repository explicitly.
func Init(uri string, opts ...Option) (core.Repository, error) {
	return platform.Init(uri, opts...)
}

// NewStore wraps an initialized repository.
func NewStore(repo core.Repository, opts ...Option) *core.Store {
	return platform.NewStore(repo, opts...)
}

// Close releases a repository returned by Init, if it holds resources.
func Close(repo core.Repository) error {
	return platform.Close(repo)
}

// --- Utils ---

// VerifyIDToken resolves a Firebase ID token to the user it belongs to.
func VerifyIDToken(ctx context.Context, token string, opts ...Option) (Identity, error) {
	return platform.VerifyIDToken(ctx, token, opts...)
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
