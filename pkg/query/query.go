// Package query filters notes with expr-lang expressions, e.g.
//
//	group == "Work" && hour >= 18 && length > 100
//	title contains "meeting" && createdAt > now() - duration("168h")
//
// Every expression sees the fields of Env and must yield a boolean.
package query

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/monodeaf/notemode/pkg/core"
)

// ErrEmptyExpression is returned for blank queries.
var ErrEmptyExpression = errors.New("query: expression must not be empty")

// Env is what an expression can reference for one note.
type Env struct {
	Title     string    `expr:"title"`
	Content   string    `expr:"content"`
	Group     string    `expr:"group"`
	GroupID   string    `expr:"groupId"`
	CreatedAt time.Time `expr:"createdAt"`
	Date      string    `expr:"date"` // YYYY-MM-DD
	Hour      int       `expr:"hour"`
	Weekday   string    `expr:"weekday"` // "Monday"...
	Length    int       `expr:"length"`  // characters of content
}

// NewEnv describes ref. Calendar fields use the location of CreatedAt,
// which the store sets to its own.
func NewEnv(ref core.NoteRef) Env {
	at := ref.Note.CreatedAt
	return Env{
		Title:     ref.Note.Title,
		Content:   ref.Note.Content,
		Group:     ref.GroupName,
		GroupID:   ref.GroupID,
		CreatedAt: at,
		Date:      at.Format(core.DateKeyLayout),
		Hour:      at.Hour(),
		Weekday:   at.Weekday().String(),
		Length:    utf8.RuneCountInString(ref.Note.Content),
	}
}

// Query is a compiled filter expression. It is safe for concurrent use.
type Query struct {
	source  string
	program *exprvm.Program
}

// Compile checks source against Env and prepares it for repeated use.
func Compile(source string) (*Query, error) {
	if source == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(source,
		exprlang.Env(Env{}),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("query: compile %q: %w", source, err)
	}
	return &Query{source: source, program: program}, nil
}

// String returns the source expression.
func (q *Query) String() string { return q.source }

// Match evaluates the query for one note.
func (q *Query) Match(ref core.NoteRef) (bool, error) {
	out, err := exprlang.Run(q.program, NewEnv(ref))
	if err != nil {
		return false, fmt.Errorf("query: run %q: %w", q.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Filter keeps the refs that match, preserving their order.
func (q *Query) Filter(refs []core.NoteRef) ([]core.NoteRef, error) {
	out := make([]core.NoteRef, 0, len(refs))
	for _, ref := range refs {
		ok, err := q.Match(ref)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

// Notes runs source over every note of the store, oldest first.
func Notes(s *core.Store, source string) ([]core.NoteRef, error) {
	q, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return q.Filter(s.AllNotes())
}
