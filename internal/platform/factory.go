package platform

import (
	"github.com/monodeaf/notemode/pkg/core"
)

// New creates a Store over the repository selected by the options.
//
//	store, err := notemode.New("./vault", notemode.WithLogger(logger))
//
// The URI argument is adapter-specific, see Init. No user is bound yet:
// call SetUser before working with groups and notes.
func New(uri string, opts ...Option) (*core.Store, error) {
	o := apply(opts)

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}
	return newStore(repo, o), nil
}

// NewStore wraps an already initialized repository, applying the store
// options (logger, clock, location...).
func NewStore(repo core.Repository, opts ...Option) *core.Store {
	return newStore(repo, apply(opts))
}

func newStore(repo core.Repository, o *options) *core.Store {
	return core.NewStore(repo, core.StoreConfig{
		Logger:      o.logger,
		Clock:       o.clock,
		NewID:       o.newID,
		Location:    o.location,
		DedupWindow: o.dedupWindow,
		Context:     o.ctx,
	})
}
