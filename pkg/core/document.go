package core

import (
	"fmt"
	"sort"
	"time"
)

// TimestampLayout is the ISO-8601 form createdAt takes in persisted documents
// (UTC, millisecond precision). Existing documents depend on it.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Document is the persisted unit for one user: every group, every note and
// the display order. Writes always replace the whole document.
type Document struct {
	Groups     map[string]GroupDocument `json:"groups" yaml:"groups" firestore:"groups"`
	GroupOrder []string                 `json:"groupOrder" yaml:"groupOrder" firestore:"groupOrder"`
}

// GroupDocument is the wire form of a Group.
type GroupDocument struct {
	ID         string                  `json:"id" yaml:"id" firestore:"id"`
	Name       string                  `json:"name" yaml:"name" firestore:"name"`
	Background BackgroundDocument      `json:"background" yaml:"background" firestore:"background"`
	Notes      map[string]NoteDocument `json:"notes,omitempty" yaml:"notes,omitempty" firestore:"notes,omitempty"`
}

// BackgroundDocument is the wire form of a Background.
type BackgroundDocument struct {
	Type  string `json:"type" yaml:"type" firestore:"type"`
	Value string `json:"value" yaml:"value" firestore:"value"`
}

// NoteDocument is the wire form of a Note. Content travels as "notes".
type NoteDocument struct {
	ID        string `json:"id" yaml:"id" firestore:"id"`
	Title     string `json:"title" yaml:"title" firestore:"title"`
	Notes     string `json:"notes" yaml:"notes" firestore:"notes"`
	CreatedAt string `json:"createdAt" yaml:"createdAt" firestore:"createdAt"`
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := Document{
		Groups:     make(map[string]GroupDocument, len(d.Groups)),
		GroupOrder: append([]string(nil), d.GroupOrder...),
	}
	for id, g := range d.Groups {
		notes := make(map[string]NoteDocument, len(g.Notes))
		for nid, n := range g.Notes {
			notes[nid] = n
		}
		g.Notes = notes
		out.Groups[id] = g
	}
	return out
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp, which covers TimestampLayout.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encodeDocument(groups map[string]*Group, order []string) Document {
	doc := Document{
		Groups:     make(map[string]GroupDocument, len(groups)),
		GroupOrder: append([]string{}, order...),
	}
	for id, g := range groups {
		gd := GroupDocument{
			ID:   g.ID,
			Name: g.Name,
			Background: BackgroundDocument{
				Type:  string(g.Background.Kind),
				Value: g.Background.Value,
			},
			Notes: make(map[string]NoteDocument, len(g.Notes)),
		}
		for nid, n := range g.Notes {
			gd.Notes[nid] = NoteDocument{
				ID:        n.ID,
				Title:     n.Title,
				Notes:     n.Content,
				CreatedAt: FormatTimestamp(n.CreatedAt),
			}
		}
		doc.Groups[id] = gd
	}
	return doc
}

// decodeDocument rehydrates a document. Map keys are authoritative for ids.
// The returned order satisfies the ordering invariant even when the stored
// one is missing, stale or duplicated.
func decodeDocument(doc *Document, loc *time.Location) (map[string]*Group, []string, error) {
	groups := make(map[string]*Group)
	if doc == nil {
		return groups, []string{}, nil
	}

	for gid, gd := range doc.Groups {
		g := &Group{
			ID:   gid,
			Name: gd.Name,
			Background: Background{
				Kind:  BackgroundKind(gd.Background.Type),
				Value: gd.Background.Value,
			},
			Notes: make(map[string]*Note, len(gd.Notes)),
		}
		if g.Background.IsZero() {
			g.Background = DefaultBackground
		}
		for nid, nd := range gd.Notes {
			createdAt, err := ParseTimestamp(nd.CreatedAt)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: note %s in group %s: %v", ErrBadPayload, nid, gid, err)
			}
			g.Notes[nid] = &Note{
				ID:        nid,
				Title:     nd.Title,
				CreatedAt: createdAt.In(loc),
				Content:   nd.Notes,
			}
		}
		groups[gid] = g
	}

	return groups, repairOrder(doc.GroupOrder, groups), nil
}

// repairOrder keeps the stored order for known ids, drops dangling and
// duplicate entries, and appends groups missing from it in ascending id order
// (ids are time-ordered, so this is creation order).
func repairOrder(stored []string, groups map[string]*Group) []string {
	order := make([]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, id := range stored {
		if _, ok := groups[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}

	var missing []string
	for id := range groups {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return append(order, missing...)
}
