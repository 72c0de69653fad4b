package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DateKeyLayout keys the calendar index returned by NotesByDate.
const DateKeyLayout = "2006-01-02"

// Group returns a copy of the group.
func (s *Store) Group(groupID string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return Group{}, false
	}
	return g.clone(), true
}

// Groups returns copies of all groups in display order.
func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Group, 0, len(s.order))
	for _, id := range s.order {
		if g, ok := s.groups[id]; ok {
			out = append(out, g.clone())
		}
	}
	return out
}

// GroupOrder returns the display order of group ids.
func (s *Store) GroupOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.order...)
}

// Note returns a copy of a note.
func (s *Store) Note(groupID, noteID string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.noteLocked(groupID, noteID); n != nil {
		return *n, true
	}
	return Note{}, false
}

// Notes returns the notes of a group, newest first.
func (s *Store) Notes(groupID string) []Note {
	return s.Search(groupID, "")
}

// Search returns the notes of a group whose title or content contains text,
// ignoring case, newest first. An empty text matches everything.
func (s *Store) Search(groupID, text string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil
	}

	text = strings.ToLower(text)
	out := make([]Note, 0, len(g.Notes))
	for _, n := range g.Notes {
		if text == "" ||
			strings.Contains(strings.ToLower(n.Title), text) ||
			strings.Contains(strings.ToLower(n.Content), text) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// FindByTitle matches note titles across all groups against a glob pattern
// (e.g. "meeting *", "{todo,plan}*"). Results are in chronological order.
func (s *Store) FindByTitle(pattern string) ([]NoteRef, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid title pattern %q", pattern)
	}

	var out []NoteRef
	for _, ref := range s.AllNotes() {
		ok, err := doublestar.Match(pattern, ref.Note.Title)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

// AllNotes returns every note with its group, oldest first.
func (s *Store) AllNotes() []NoteRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chronologicalLocked()
}

// NotesByDate indexes every note by its creation day (DateKeyLayout, in the
// store location). Each day lists notes oldest first.
func (s *Store) NotesByDate() map[string][]NoteRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]NoteRef)
	for _, ref := range s.chronologicalLocked() {
		key := ref.Note.CreatedAt.In(s.loc).Format(DateKeyLayout)
		out[key] = append(out[key], ref)
	}
	return out
}

// Snapshot returns the document that the next save would write.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeDocument(s.groups, s.order)
}

// chronologicalLocked lists notes by (CreatedAt, ID) so every scan that
// depends on order is reproducible. Callers hold s.mu.
func (s *Store) chronologicalLocked() []NoteRef {
	var out []NoteRef
	for _, gid := range s.order {
		g, ok := s.groups[gid]
		if !ok {
			continue
		}
		for _, n := range g.Notes {
			out = append(out, NoteRef{GroupID: g.ID, GroupName: g.Name, Note: *n})
		}
	}
	sortRefs(out)
	return out
}

func sortRefs(refs []NoteRef) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i].Note, refs[j].Note
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
