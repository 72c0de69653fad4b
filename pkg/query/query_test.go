package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/adapters/memory"
	"github.com/monodeaf/notemode/pkg/core"
	"github.com/monodeaf/notemode/pkg/query"
)

func seeded(t *testing.T) *core.Store {
	t.Helper()
	s := core.NewStore(memory.NewRepository(), core.StoreConfig{Location: time.UTC})
	require.NoError(t, s.SetUser(context.Background(), "u1"))

	work := s.CreateGroup("Work", core.Background{})
	home := s.CreateGroup("Home", core.Background{})
	s.ImportNotes(work.ID, []core.ImportedNote{
		{Title: "standup", Content: "short", CreatedAt: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)},
		{Title: "retro meeting", Content: "a much longer body of text", CreatedAt: time.Date(2024, 5, 10, 19, 30, 0, 0, time.UTC)},
	})
	s.ImportNotes(home.ID, []core.ImportedNote{
		{Title: "groceries", Content: "milk", CreatedAt: time.Date(2024, 5, 11, 20, 0, 0, 0, time.UTC)},
	})
	return s
}

func titles(refs []core.NoteRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Note.Title)
	}
	return out
}

func TestNotes(t *testing.T) {
	s := seeded(t)

	cases := []struct {
		expr string
		want []string
	}{
		{`group == "Work"`, []string{"standup", "retro meeting"}},
		{`hour >= 18`, []string{"retro meeting", "groceries"}},
		{`title contains "meeting" || content == "milk"`, []string{"retro meeting", "groceries"}},
		{`weekday == "Monday"`, []string{"standup"}},
		{`date == "2024-05-11"`, []string{"groceries"}},
		{`length > 10`, []string{"retro meeting"}},
		{`createdAt > date("2024-05-09T00:00:00Z")`, []string{"retro meeting", "groceries"}},
		{`false`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			refs, err := query.Notes(s, tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(refs))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := query.Compile("")
	assert.ErrorIs(t, err, query.ErrEmptyExpression)

	_, err = query.Compile(`title + 1`)
	assert.Error(t, err, "not a boolean")

	_, err = query.Compile(`unknownField == 1`)
	assert.Error(t, err)
}

func TestNewEnv(t *testing.T) {
	ref := core.NoteRef{
		GroupID:   "g1",
		GroupName: "G",
		Note: core.Note{
			Title:     "t",
			Content:   "héllo",
			CreatedAt: time.Date(2024, 5, 7, 23, 15, 0, 0, time.UTC),
		},
	}
	env := query.NewEnv(ref)
	assert.Equal(t, 5, env.Length)
	assert.Equal(t, 23, env.Hour)
	assert.Equal(t, "Tuesday", env.Weekday)
	assert.Equal(t, "2024-05-07", env.Date)

	q, err := query.Compile(`groupId == "g1" && length == 5`)
	require.NoError(t, err)
	ok, err := q.Match(ref)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `groupId == "g1" && length == 5`, q.String())
}
