package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/monodeaf/notemode/pkg/adapters/fs"
	"github.com/monodeaf/notemode/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory    = "memory"
	AdapterFS        = "fs"
	AdapterSQLite    = "sqlite"
	AdapterFirebase  = "firebase" // Realtime Database
	AdapterFirestore = "firestore"
)

// options holds the internal configuration for a notemode store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string

	// fs
	format              string
	mustExist           bool
	strict              bool
	serializers         map[string]fs.Serializer
	watcherErrorHandler func(error)

	readOnly bool

	// firebase / firestore
	projectID       string
	credentialsFile string
	credentialsB64  string
	collection      string

	// store
	clock       func() time.Time
	newID       func() string
	location    *time.Location
	dedupWindow time.Duration
	ctx         context.Context
}

// Option defines a functional option for configuring notemode.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:     AdapterFS,
		serializers: make(map[string]fs.Serializer),
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, WithAdapter is ignored.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default),
// "memory", "sqlite", "firebase" or "firestore".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFormat sets the extension of new fs snapshots (".json" or ".yaml").
func WithFormat(ext string) Option {
	return func(o *options) {
		o.format = ext
	}
}

// WithSerializer registers a custom fs serializer for an extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithStrict rejects unknown fields when parsing fs snapshots.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithReadOnly enables read-only mode.
// Writes return core.ErrReadOnly and initialization creates nothing.
// The store still works in memory; its background saves are logged as failed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithWatcherErrorHandler registers a callback for errors in the fs Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrorHandler = fn
	}
}

// WithProjectID sets the Google Cloud project for the firebase and
// firestore adapters.
func WithProjectID(id string) Option {
	return func(o *options) {
		o.projectID = id
	}
}

// WithCredentialsFile points at a service account key. Without credentials
// Application Default Credentials are used.
func WithCredentialsFile(path string) Option {
	return func(o *options) {
		o.credentialsFile = path
	}
}

// WithCredentialsJSONBase64 passes a base64 encoded service account key.
func WithCredentialsJSONBase64(b64 string) Option {
	return func(o *options) {
		o.credentialsB64 = b64
	}
}

// WithCollection sets the Firestore collection (default "users").
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// WithClock replaces time.Now for note creation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithLocation sets the calendar used by statistics. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithDedupWindow sets how close two same-title notes must be created for
// the second to be treated as a duplicate.
func WithDedupWindow(d time.Duration) Option {
	return func(o *options) {
		o.dedupWindow = d
	}
}

// WithContext bounds background snapshot writes and adapter setup.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}
