package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/internal/platform"
	"github.com/monodeaf/notemode/pkg/core"
)

const flushTimeout = 10 * time.Second

var errNoUser = errors.New("no user: pass --user, --id-token or set NOTEMODE_USER")

// session is a store bound to the configured user.
type session struct {
	store *core.Store
	repo  core.Repository
}

// openSession builds the repository from cfg, resolves the user and loads
// their snapshot. Callers must Close it to flush pending writes.
func openSession(ctx context.Context) (*session, error) {
	opts := append(cfg.Options(),
		platform.WithLogger(slog.Default()),
		platform.WithContext(context.WithoutCancel(ctx)),
	)

	user := cfg.User
	if idToken != "" {
		identity, err := platform.VerifyIDToken(ctx, idToken, opts...)
		if err != nil {
			return nil, err
		}
		user = identity.UID
		slog.Debug("id token verified", "uid", identity.UID, "email", identity.Email)
	}
	if user == "" {
		return nil, errNoUser
	}

	repo, err := platform.Init(cfg.URI(), opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s adapter: %w", cfg.Adapter, err)
	}
	store := platform.NewStore(repo, opts...)
	if err := store.SetUser(ctx, user); err != nil {
		_ = platform.Close(repo)
		return nil, err
	}
	return &session{store: store, repo: repo}, nil
}

// Close waits for pending snapshot writes and releases the repository.
func (s *session) Close(ctx context.Context) error {
	err := s.store.Flush(ctx)
	return errors.Join(err, platform.Close(s.repo))
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	// Flush even when ctx was cancelled by a signal.
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	return errors.Join(fn(s), s.Close(closeCtx))
}

// resolveGroup accepts a group id or, failing that, a case-insensitive name.
func resolveGroup(store *core.Store, ref string) (core.Group, error) {
	if g, ok := store.Group(ref); ok {
		return g, nil
	}
	var found []core.Group
	for _, g := range store.Groups() {
		if strings.EqualFold(g.Name, ref) {
			found = append(found, g)
		}
	}
	switch len(found) {
	case 0:
		return core.Group{}, fmt.Errorf("group %q not found", ref)
	case 1:
		return found[0], nil
	}
	return core.Group{}, fmt.Errorf("group name %q is ambiguous (%d groups), use the id", ref, len(found))
}

// resolveNote accepts a note id or an exact title within the group.
func resolveNote(store *core.Store, groupID, ref string) (core.Note, error) {
	if n, ok := store.Note(groupID, ref); ok {
		return n, nil
	}
	for _, n := range store.Notes(groupID) {
		if n.Title == ref {
			return n, nil
		}
	}
	return core.Note{}, fmt.Errorf("note %q not found", ref)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
