// Package core holds the note-organization domain: groups, notes, the
// persistence port and the Store that mediates every mutation.
package core

import (
	"fmt"
	"time"
)

// BackgroundKind tells how a group is painted.
type BackgroundKind string

const (
	BackgroundColor BackgroundKind = "color"
	BackgroundImage BackgroundKind = "image"
)

// DefaultBackground is applied to groups created without one.
var DefaultBackground = Background{Kind: BackgroundColor, Value: "#ffffff"}

// Background is either a CSS color or an image URL.
type Background struct {
	Kind  BackgroundKind
	Value string
}

// IsZero reports whether no background was specified.
func (b Background) IsZero() bool {
	return b.Kind == "" && b.Value == ""
}

// Note is a titled, timestamped rich-text unit owned by exactly one Group.
// Content is opaque to the store.
type Note struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Content   string
}

// Group is a named, visually-styled container for notes.
// Notes has no meaningful iteration order.
type Group struct {
	ID         string
	Name       string
	Background Background
	Notes      map[string]*Note
}

func (g *Group) clone() Group {
	out := Group{
		ID:         g.ID,
		Name:       g.Name,
		Background: g.Background,
		Notes:      make(map[string]*Note, len(g.Notes)),
	}
	for id, n := range g.Notes {
		cp := *n
		out.Notes[id] = &cp
	}
	return out
}

// Direction is the way MoveGroup shifts a group in the ordering list.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection accepts "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Left, Right:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q (want left or right)", s)
}

// NoteRef pairs a note with the group that owns it.
type NoteRef struct {
	GroupID   string
	GroupName string
	Note      Note
}

// ImportedNote is a note arriving from an export file.
// A zero CreatedAt means "now".
type ImportedNote struct {
	Title     string
	Content   string
	CreatedAt time.Time
}

// EventType represents the type of change observed in a user's document.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports a change to a persisted user document made outside this
// process (another tab, another device, a manual edit).
type Event struct {
	Type      EventType
	UserID    string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.UserID)
}
