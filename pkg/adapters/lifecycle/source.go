// Package lifecycle exposes snapshot change events as a lifecycle.Source so
// applications can react to them next to signals and other sources.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/monodeaf/notemode/pkg/core"
)

// SourceOption configures a snapshot source.
type SourceOption func(*snapshotSource)

// ForUser drops events about any other user.
func ForUser(userID string) SourceOption {
	return func(s *snapshotSource) { s.user = userID }
}

// snapshotSource re-emits core.Event values. While the consumer is busy
// only the newest event per user is kept, since a reload reads the whole
// snapshot anyway.
type snapshotSource struct {
	in   <-chan core.Event
	out  chan lifecycle.Event
	user string
}

// NewSource wraps the channel returned by Store.Watch or a repository's
// Watch.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &snapshotSource{in: events, out: make(chan lifecycle.Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *snapshotSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input closes. Pending
// events are delivered before the output channel is closed.
func (s *snapshotSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)

		var pending []core.Event
		in := s.in
		for in != nil || len(pending) > 0 {
			var out chan lifecycle.Event
			var next lifecycle.Event
			if len(pending) > 0 {
				out, next = s.out, pending[0]
			}

			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-in:
				if !ok {
					in = nil
					continue
				}
				if s.user != "" && e.UserID != s.user {
					continue
				}
				pending = coalesce(pending, e)
			case out <- next:
				pending = pending[1:]
			}
		}
		return nil
	})
	return nil
}

// coalesce replaces a queued event of the same user or appends e.
func coalesce(pending []core.Event, e core.Event) []core.Event {
	for i := range pending {
		if pending[i].UserID == e.UserID {
			pending[i] = e
			return pending
		}
	}
	return append(pending, e)
}
