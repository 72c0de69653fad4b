package platform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/monodeaf/notemode/pkg/adapters/firebase"
	"github.com/monodeaf/notemode/pkg/adapters/fs"
	"github.com/monodeaf/notemode/pkg/adapters/memory"
	"github.com/monodeaf/notemode/pkg/adapters/sqlite"
	"github.com/monodeaf/notemode/pkg/core"
)

// Init builds and initializes the repository selected by the options.
// The 'uri' argument is adapter-specific:
//
//	fs        vault directory
//	sqlite    database file (":memory:" for a private in-process database)
//	firebase  Realtime Database URL
//	firestore project id (or use WithProjectID)
//	memory    ignored
//
// Repositories holding resources should be released with Close.
func Init(uri string, opts ...Option) (core.Repository, error) {
	return initRepository(uri, apply(opts))
}

func initRepository(uri string, o *options) (core.Repository, error) {
	// 1. Check for injected repository
	if o.repository != nil {
		return o.repository, nil
	}

	// 2. Initialize based on Adapter
	var repo core.Repository
	var err error

	switch o.adapter {
	case AdapterFS, "":
		repo, err = initFS(uri, o)
	case AdapterMemory:
		repo = memory.NewRepository()
	case AdapterSQLite:
		repo, err = sqlite.Open(sqlite.Config{Path: uri, ReadOnly: o.readOnly, Logger: o.logger, Clock: o.clock})
	case AdapterFirebase:
		repo, err = initRealtime(uri, o)
	case AdapterFirestore:
		repo, err = initFirestore(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if initializer, ok := repo.(core.Initializer); ok {
		if err := initializer.Initialize(o.ctx); err != nil {
			_ = Close(repo)
			return nil, err
		}
	}

	o.logger.Debug("repository ready", "adapter", o.adapter, "uri", uri, "read_only", o.readOnly)
	return repo, nil
}

// initFS handles the initialization logic for the Filesystem adapter
func initFS(path string, o *options) (core.Repository, error) {
	if path == "" {
		return nil, errors.New("fs adapter: vault path is required")
	}

	var serializers map[string]fs.Serializer
	if len(o.serializers) > 0 {
		serializers = fs.DefaultSerializers(o.strict)
		for ext, s := range o.serializers {
			serializers[ext] = s
		}
	}

	return fs.NewRepository(fs.Config{
		Path:         path,
		Format:       o.format,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Strict:       o.strict,
		Logger:       o.logger,
		ErrorHandler: o.watcherErrorHandler,
		Serializers:  serializers,
	}), nil
}

func (o *options) firebaseConfig() firebase.Config {
	return firebase.Config{
		ProjectID:             o.projectID,
		CredentialsFile:       o.credentialsFile,
		CredentialsJSONBase64: o.credentialsB64,
		Collection:            o.collection,
		ReadOnly:              o.readOnly,
		Logger:                o.logger,
	}
}

func initRealtime(databaseURL string, o *options) (core.Repository, error) {
	cfg := o.firebaseConfig()
	cfg.DatabaseURL = databaseURL
	app, err := firebase.NewApp(o.ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Database(o.ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: database client: %w", err)
	}
	return firebase.NewRealtimeRepository(client, cfg), nil
}

func initFirestore(projectID string, o *options) (core.Repository, error) {
	cfg := o.firebaseConfig()
	if cfg.ProjectID == "" {
		cfg.ProjectID = projectID
	}
	app, err := firebase.NewApp(o.ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Firestore(o.ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: client: %w", err)
	}
	return firebase.NewFirestoreRepository(client, cfg), nil
}

// Close releases repositories that hold resources (database handles,
// network clients). Other repositories are left alone.
func Close(repo core.Repository) error {
	if c, ok := repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// VerifyIDToken checks a Firebase ID token with the project configured by
// opts and returns its owner. The UID is the user id a store binds to.
func VerifyIDToken(ctx context.Context, token string, opts ...Option) (firebase.Identity, error) {
	o := apply(opts)
	app, err := firebase.NewApp(ctx, o.firebaseConfig())
	if err != nil {
		return firebase.Identity{}, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return firebase.Identity{}, fmt.Errorf("firebase: auth client: %w", err)
	}
	return firebase.VerifyUser(ctx, client, token)
}
