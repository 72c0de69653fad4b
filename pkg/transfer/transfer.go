// Package transfer reads and writes the per-group backup file:
//
//	{"groupName": "...", "notes": [{"title": "...", "notes": "...", "createdAt": "..."}]}
//
// Import is all-or-nothing: a file that fails validation creates no notes.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/monodeaf/notemode/pkg/core"
)

// ErrUnknownGroup is returned when the target group does not exist.
var ErrUnknownGroup = errors.New("transfer: group not found")

// File is the backup document of one group.
type File struct {
	GroupName string     `json:"groupName"`
	Notes     []FileNote `json:"notes"`
}

// FileNote is one exported note. Notes carries the rich-text content.
type FileNote struct {
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ImportFormatError reports a file that is not a valid backup.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid notes file: %s: %v", e.Reason, e.Err)
	}
	return "invalid notes file: " + e.Reason
}

func (e *ImportFormatError) Unwrap() error { return e.Err }

// Export builds the backup of a group, oldest note first.
func Export(s *core.Store, groupID string) (File, bool) {
	g, ok := s.Group(groupID)
	if !ok {
		return File{}, false
	}

	notes := make([]core.Note, 0, len(g.Notes))
	for _, n := range g.Notes {
		notes = append(notes, *n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})

	f := File{GroupName: g.Name, Notes: make([]FileNote, 0, len(notes))}
	for _, n := range notes {
		f.Notes = append(f.Notes, FileNote{
			Title:     n.Title,
			Notes:     n.Content,
			CreatedAt: core.FormatTimestamp(n.CreatedAt),
		})
	}
	return f, true
}

// Write encodes f as indented JSON.
func Write(w io.Writer, f File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(f)
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName is the suggested name of a group's backup file.
func FileName(groupName string) string {
	return whitespace.ReplaceAllString(strings.ToLower(groupName), "-") + "-notes.json"
}

// Decode parses and validates a backup file. The "notes" key must be present
// and hold an array; each createdAt, when given, must be an RFC 3339 time.
func Decode(r io.Reader) (File, []core.ImportedNote, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return File{}, nil, &ImportFormatError{Reason: "not a JSON object", Err: err}
	}
	raw, ok := top["notes"]
	if !ok {
		return File{}, nil, &ImportFormatError{Reason: `missing "notes"`}
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return File{}, nil, &ImportFormatError{Reason: `"notes" is not an array`}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, nil, &ImportFormatError{Reason: "malformed note entry", Err: err}
	}

	imported := make([]core.ImportedNote, 0, len(f.Notes))
	for i, n := range f.Notes {
		var at time.Time
		if n.CreatedAt != "" {
			at, err = core.ParseTimestamp(n.CreatedAt)
			if err != nil {
				return File{}, nil, &ImportFormatError{Reason: fmt.Sprintf("note %d has a bad createdAt", i), Err: err}
			}
		}
		imported = append(imported, core.ImportedNote{Title: n.Title, Content: n.Notes, CreatedAt: at})
	}
	return f, imported, nil
}

// Import adds every note of the backup in r to groupID in one atomic step
// and returns how many were added.
func Import(s *core.Store, groupID string, r io.Reader) (int, error) {
	if _, ok := s.Group(groupID); !ok {
		return 0, ErrUnknownGroup
	}
	_, notes, err := Decode(r)
	if err != nil {
		return 0, err
	}
	n, ok := s.ImportNotes(groupID, notes)
	if !ok {
		return 0, ErrUnknownGroup
	}
	return n, nil
}
