package core

import (
	"strings"
	"time"
)

// CreateGroup adds a group in front of the display order. A zero background
// becomes DefaultBackground.
func (s *Store) CreateGroup(name string, bg Background) Group {
	if bg.IsZero() {
		bg = DefaultBackground
	}

	s.mu.Lock()
	g := &Group{
		ID:         s.freshIDLocked(func(id string) bool { _, ok := s.groups[id]; return ok }),
		Name:       name,
		Background: bg,
		Notes:      make(map[string]*Note),
	}
	s.groups[g.ID] = g
	s.order = append([]string{g.ID}, s.order...)
	out := g.clone()
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("group created", "group", out.ID)
	s.persistAsync(job, ok)
	return out
}

// CreateNote adds an empty note titled title to the group. It reports false
// when the group does not exist. A note with the same title created within
// the dedup window is returned instead of a duplicate (double submit).
func (s *Store) CreateNote(groupID, title string) (Note, bool) {
	s.mu.Lock()
	g, found := s.groups[groupID]
	if !found {
		s.mu.Unlock()
		return Note{}, false
	}

	now := s.now()
	for _, n := range g.Notes {
		if n.Title == title && absDuration(now.Sub(n.CreatedAt)) < s.dedup {
			existing := *n
			s.mu.Unlock()
			s.logger.Debug("duplicate note suppressed", "group", groupID, "note", existing.ID)
			return existing, true
		}
	}

	n := &Note{
		ID:        s.freshIDLocked(func(id string) bool { _, ok := g.Notes[id]; return ok }),
		Title:     title,
		CreatedAt: now.In(s.loc),
	}
	g.Notes[n.ID] = n
	out := *n
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("note created", "group", groupID, "note", out.ID)
	s.persistAsync(job, ok)
	return out, true
}

// ImportNotes inserts notes into the group in one step and one save.
// Provided timestamps are kept; zero ones become now. The duplicate guard is
// not applied. It reports false when the group does not exist.
func (s *Store) ImportNotes(groupID string, notes []ImportedNote) (int, bool) {
	s.mu.Lock()
	g, found := s.groups[groupID]
	if !found {
		s.mu.Unlock()
		return 0, false
	}

	now := s.now()
	for _, in := range notes {
		createdAt := in.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		n := &Note{
			ID:        s.freshIDLocked(func(id string) bool { _, ok := g.Notes[id]; return ok }),
			Title:     in.Title,
			CreatedAt: createdAt.In(s.loc),
			Content:   in.Content,
		}
		g.Notes[n.ID] = n
	}
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("notes imported", "group", groupID, "count", len(notes))
	s.persistAsync(job, ok)
	return len(notes), true
}

// DeleteGroup removes the group, its notes and its order entry.
func (s *Store) DeleteGroup(groupID string) {
	s.mu.Lock()
	delete(s.groups, groupID)
	order := s.order[:0:0]
	for _, id := range s.order {
		if id != groupID {
			order = append(order, id)
		}
	}
	s.order = order
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(job, ok)
}

// DeleteNote removes a note when both the group and the note exist.
func (s *Store) DeleteNote(groupID, noteID string) {
	s.mu.Lock()
	g, found := s.groups[groupID]
	if !found {
		s.mu.Unlock()
		return
	}
	delete(g.Notes, noteID)
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(job, ok)
}

// MoveGroup shifts a group one slot left or right in the display order.
// Moves past either end are no-ops. It reports whether the order changed;
// only an actual move is saved.
func (s *Store) MoveGroup(groupID string, dir Direction) bool {
	s.mu.Lock()
	cur := -1
	for i, id := range s.order {
		if id == groupID {
			cur = i
			break
		}
	}
	if cur == -1 {
		s.mu.Unlock()
		return false
	}

	next := cur
	switch dir {
	case Left:
		next = max(0, cur-1)
	case Right:
		next = min(len(s.order)-1, cur+1)
	}
	if next == cur {
		s.mu.Unlock()
		return false
	}

	s.order[cur], s.order[next] = s.order[next], s.order[cur]
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(job, ok)
	return true
}

// RenameGroup sets a new, non-empty (after trimming) name.
func (s *Store) RenameGroup(groupID, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return s.mutateGroup(groupID, func(g *Group) { g.Name = name })
}

// SetGroupBackground replaces the group background. A zero background is rejected.
func (s *Store) SetGroupBackground(groupID string, bg Background) bool {
	if bg.IsZero() {
		return false
	}
	return s.mutateGroup(groupID, func(g *Group) { g.Background = bg })
}

// SaveNoteContent replaces the content of a note (autosave path).
func (s *Store) SaveNoteContent(groupID, noteID, content string) bool {
	s.mu.Lock()
	n := s.noteLocked(groupID, noteID)
	if n == nil {
		s.mu.Unlock()
		return false
	}
	n.Content = content
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(job, ok)
	return true
}

// NoteContent returns the content of a note, or "" when it does not exist.
func (s *Store) NoteContent(groupID, noteID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.noteLocked(groupID, noteID); n != nil {
		return n.Content
	}
	return ""
}

func (s *Store) mutateGroup(groupID string, fn func(*Group)) bool {
	s.mu.Lock()
	g, found := s.groups[groupID]
	if !found {
		s.mu.Unlock()
		return false
	}
	fn(g)
	job, ok := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(job, ok)
	return true
}

func (s *Store) noteLocked(groupID, noteID string) *Note {
	g, ok := s.groups[groupID]
	if !ok {
		return nil
	}
	return g.Notes[noteID]
}

// freshIDLocked draws ids until one is unused. Generators may collide
// (tests, custom clocks); UUIDv7 practically never does.
func (s *Store) freshIDLocked(taken func(string) bool) string {
	id := s.newID()
	for i := 0; taken(id) && i < 8; i++ {
		id = s.newID()
	}
	if taken(id) {
		id = NewID()
	}
	return id
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
