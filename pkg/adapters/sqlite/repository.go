// Package sqlite stores user snapshots in a single SQLite database using the
// pure-Go modernc.org/sqlite driver, so no cgo toolchain is needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/monodeaf/notemode/pkg/core"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var schema = []string{
	`PRAGMA busy_timeout = 5000;`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		user_id    TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		revision   INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);`,
}

// Config holds the configuration for the SQLite repository.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in process.
	Path     string
	ReadOnly bool
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Repository implements core.Repository with one row per user. The row holds
// the same JSON document the other backends store.
type Repository struct {
	config Config
	db     *sql.DB

	mu     sync.Mutex
	writes int
}

// Open opens (and creates if needed) the database at cfg.Path.
// Call Initialize before use to create the schema.
func Open(cfg Config) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.Path != ":memory:" && !strings.HasPrefix(cfg.Path, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	return &Repository{config: cfg, db: db}, nil
}

// Initialize implements core.Initializer by creating the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Read implements core.Repository.
func (r *Repository) Read(ctx context.Context, userID string) (*core.Document, error) {
	if userID == "" {
		return nil, core.ErrNoUser
	}

	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE user_id = ?`, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: read %s: %w", userID, err)
	}

	var doc core.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("sqlite: decode snapshot of %s: %w", userID, err)
	}
	return &doc, nil
}

// Write implements core.Repository as an upsert of the user's row.
func (r *Repository) Write(ctx context.Context, userID string, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if userID == "" {
		return core.ErrNoUser
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlite: encode snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, data, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			revision = snapshots.revision + 1,
			updated_at = excluded.updated_at`,
		userID, string(data), core.FormatTimestamp(r.config.Clock()),
	)
	if err != nil {
		return fmt.Errorf("sqlite: write %s: %w", userID, err)
	}

	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	r.config.Logger.Debug("snapshot written", "user", userID, "bytes", len(data))
	return nil
}

// ListUsers implements core.UserLister.
func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM snapshots ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Revision returns how many times the user's row has been written, 0 if never.
func (r *Repository) Revision(ctx context.Context, userID string) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx,
		`SELECT revision FROM snapshots WHERE user_id = ?`, userID,
	).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
	Writes   int    `json:"writes"`
	OpenConn int    `json:"open_connections"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RepositoryState{
		Path:     r.config.Path,
		ReadOnly: r.config.ReadOnly,
		Writes:   r.writes,
		OpenConn: r.db.Stats().OpenConnections,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite-repository"
}

var (
	_ core.Repository  = (*Repository)(nil)
	_ core.UserLister  = (*Repository)(nil)
	_ core.Initializer = (*Repository)(nil)

	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
