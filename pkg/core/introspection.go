package core

import (
	"github.com/aretw0/introspection"
)

var (
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)

// StoreState is a point-in-time view of the bound session.
type StoreState struct {
	UserID     string `json:"user_id,omitempty"`
	Groups     int    `json:"groups"`
	Notes      int    `json:"notes"`
	Revision   uint64 `json:"revision"`   // bumped by every snapshot taken for saving
	Generation uint64 `json:"generation"` // bumped by every user switch
	Location   string `json:"location"`
	Backend    string `json:"backend"`
}

func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StoreState{
		UserID:     s.userID,
		Groups:     len(s.groups),
		Revision:   s.revision,
		Generation: s.generation,
		Location:   s.loc.String(),
		Backend:    backendName(s.repo),
	}
	for _, g := range s.groups {
		st.Notes += len(g.Notes)
	}
	return st
}

func (s *Store) ComponentType() string {
	return "note-store"
}

func backendName(repo Repository) string {
	if c, ok := repo.(introspection.Component); ok {
		return c.ComponentType()
	}
	return "repository"
}
