package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/monodeaf/notemode/pkg/core"
)

const (
	// UsersDir holds one directory per user below the vault root.
	UsersDir = "users"
	// SnapshotName is the base name of a user's snapshot file.
	SnapshotName = "data"
)

// ErrInvalidUserID is returned for user ids that cannot name a directory.
var ErrInvalidUserID = errors.New("invalid user id")

// Repository implements core.Repository on the local filesystem. Each user
// owns users/<id>/data.<ext>, rewritten atomically on every save.
type Repository struct {
	Path string

	config      Config
	serializers map[string]Serializer
	ext         string

	// writeMu serializes writers so two saves never race on the rename.
	writeMu sync.Mutex

	mu        sync.RWMutex
	readOnly  bool
	watchers  map[string]int // live watch workers per user
	writes    int
	lastWrite time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Format       string // extension of new snapshots, ".json" (default) or ".yaml"
	MustExist    bool
	ReadOnly     bool
	Strict       bool
	Logger       *slog.Logger
	ErrorHandler func(error)
	Serializers  map[string]Serializer // defaults to DefaultSerializers(Strict)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	serializers := config.Serializers
	if serializers == nil {
		serializers = DefaultSerializers(config.Strict)
	}
	ext := normalizeExt(config.Format)
	if _, ok := serializers[ext]; !ok {
		ext = ".json"
	}
	return &Repository{
		Path:        config.Path,
		config:      config,
		serializers: serializers,
		ext:         ext,
		readOnly:    config.ReadOnly,
	}
}

func normalizeExt(format string) string {
	if format == "" {
		return ".json"
	}
	if !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	return strings.ToLower(format)
}

// Initialize prepares the vault directory.
func (r *Repository) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.config.MustExist || r.readOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Join(r.Path, UsersDir), 0o755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return nil
}

// Read implements core.Repository. The configured format is tried first,
// then every other known extension, so a vault can switch formats without
// losing data.
func (r *Repository) Read(ctx context.Context, userID string) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	for _, ext := range r.readOrder() {
		filename := r.snapshotPath(userID, ext)
		f, err := os.Open(filename)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", filename, err)
		}

		doc, err := r.serializers[ext].Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
		r.config.Logger.Debug("snapshot read", "user", userID, "file", filename)
		return doc, nil
	}
	return nil, nil
}

// Write implements core.Repository.
func (r *Repository) Write(ctx context.Context, userID string, doc core.Document) error {
	if r.isReadOnly() {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}

	data, err := r.serializers[r.ext].Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	dir := r.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	filename := r.snapshotPath(userID, r.ext)
	if err := writeFileAtomic(filename, data, 0o644); err != nil {
		return err
	}

	r.mu.Lock()
	r.writes++
	r.lastWrite = time.Now()
	r.mu.Unlock()

	r.config.Logger.Debug("snapshot written", "user", userID, "file", filename, "bytes", len(data))
	return nil
}

// ListUsers implements core.UserLister by globbing for snapshot files.
func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exts := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	pattern := path.Join(UsersDir, "*", SnapshotName+".{"+strings.Join(exts, ",")+"}")

	matches, err := doublestar.Glob(os.DirFS(r.Path), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	seen := make(map[string]bool, len(matches))
	users := make([]string, 0, len(matches))
	for _, m := range matches {
		id := path.Base(path.Dir(m))
		if seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// SetReadOnly toggles write protection at runtime.
func (r *Repository) SetReadOnly(readOnly bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readOnly = readOnly
}

func (r *Repository) isReadOnly() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readOnly
}

func (r *Repository) readOrder() []string {
	order := []string{r.ext}
	rest := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		if ext != r.ext {
			rest = append(rest, ext)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (r *Repository) userDir(userID string) string {
	return filepath.Join(r.Path, UsersDir, userID)
}

func (r *Repository) snapshotPath(userID, ext string) string {
	return filepath.Join(r.userDir(userID), SnapshotName+ext)
}

// isSnapshotFile reports whether name is a snapshot file in a known format.
func (r *Repository) isSnapshotFile(name string) bool {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) != SnapshotName {
		return false
	}
	_, ok := r.serializers[ext]
	return ok
}

func validateUserID(userID string) error {
	switch {
	case userID == "":
		return core.ErrNoUser
	case userID == "." || userID == "..",
		strings.ContainsAny(userID, `/\`),
		strings.ContainsRune(userID, 0):
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}

var (
	_ core.Repository  = (*Repository)(nil)
	_ core.UserLister  = (*Repository)(nil)
	_ core.Initializer = (*Repository)(nil)
	_ core.Watchable   = (*Repository)(nil)
)
