package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI in-process against vault as user alice.
func run(t *testing.T, vaultDir string, args ...string) (string, error) {
	t.Helper()
	verbose, asJSON, readOnly = false, false, false
	cfgFile, envFile, idToken = "", filepath.Join(vaultDir, "none.env"), ""
	adapter = "fs"
	bgColor, bgImage, noteContent, noteFile, exportOut = "", "", "", "", ""
	statsDays, remindOnce = 7, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--vault", vaultDir, "--user", "alice"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, vaultDir string, args ...string) string {
	t.Helper()
	out, err := run(t, vaultDir, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_GroupsAndNotes(t *testing.T) {
	vaultDir := t.TempDir()

	workID := strings.TrimSpace(mustRun(t, vaultDir, "group", "create", "Work", "--color", "#ff0000"))
	require.NotEmpty(t, workID)
	mustRun(t, vaultDir, "group", "create", "Home")

	var groups []groupView
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vaultDir, "group", "list", "--json")), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "Home", groups[0].Name, "new groups go first")
	assert.Equal(t, workID, groups[1].ID)
	assert.Equal(t, "#ff0000", groups[1].Background.Value)

	mustRun(t, vaultDir, "group", "move", "work", "left")
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vaultDir, "group", "list", "--json")), &groups))
	assert.Equal(t, "Work", groups[0].Name)

	mustRun(t, vaultDir, "note", "add", "Work", "standup", "--content", "<p>shipped</p>")
	assert.Contains(t, mustRun(t, vaultDir, "note", "show", "Work", "standup"), "<p>shipped</p>")

	mustRun(t, vaultDir, "note", "edit", "Work", "standup", "--content", "<p>blocked</p>")
	var shown noteView
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vaultDir, "note", "show", "Work", "standup", "--json")), &shown))
	assert.Equal(t, "<p>blocked</p>", shown.Content)
	assert.Equal(t, "Work", shown.Group)

	assert.Contains(t, mustRun(t, vaultDir, "note", "search", "Work", "BLOCK"), "standup")
	assert.Contains(t, mustRun(t, vaultDir, "note", "find", "stand*"), "standup")
	assert.Contains(t, mustRun(t, vaultDir, "note", "query", `group == "Work" && length > 3`), "standup")
	assert.NotContains(t, mustRun(t, vaultDir, "note", "query", `group == "Home"`), "standup")

	mustRun(t, vaultDir, "group", "rename", workID, "Office")
	_, err := run(t, vaultDir, "note", "show", "Work", "standup")
	assert.Error(t, err, "old name no longer resolves")

	mustRun(t, vaultDir, "note", "delete", "Office", "standup")
	assert.Empty(t, strings.TrimSpace(mustRun(t, vaultDir, "note", "list", "Office")))

	assert.Contains(t, mustRun(t, vaultDir, "group", "delete", "Home"), `deleted "Home"`)
	assert.Equal(t, "alice\n", mustRun(t, vaultDir, "users"))
}

func TestCLI_StatsAndTransfer(t *testing.T) {
	vaultDir := t.TempDir()
	mustRun(t, vaultDir, "group", "create", "Journal")
	mustRun(t, vaultDir, "note", "add", "Journal", "today", "--content", "héllo")

	var total struct {
		Total         int
		LongestStreak int
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vaultDir, "stats", "total", "--json")), &total))
	assert.Equal(t, 1, total.Total)
	assert.Equal(t, 1, total.LongestStreak)

	var days []dayView
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vaultDir, "stats", "daily", "--days", "3", "--json")), &days))
	require.Len(t, days, 3)
	assert.Equal(t, 1, days[2].Created)

	assert.Contains(t, mustRun(t, vaultDir, "stats", "edits", "Journal"), "characters:         5")

	file := filepath.Join(vaultDir, "journal.json")
	assert.Contains(t, mustRun(t, vaultDir, "export", "Journal", "--out", file), "exported 1 notes")

	mustRun(t, vaultDir, "group", "create", "Copy")
	assert.Contains(t, mustRun(t, vaultDir, "import", "Copy", file), "imported 1 notes")
	assert.Contains(t, mustRun(t, vaultDir, "note", "show", "Copy", "today"), "héllo")
}

func TestCLI_Errors(t *testing.T) {
	vaultDir := t.TempDir()

	_, err := run(t, vaultDir, "--user", "", "group", "list")
	assert.ErrorIs(t, err, errNoUser)

	_, err = run(t, vaultDir, "note", "add", "Missing", "x")
	assert.ErrorContains(t, err, `group "Missing" not found`)

	_, err = run(t, vaultDir, "group", "move", "x", "up")
	assert.Error(t, err)

	_, err = run(t, vaultDir, "--adapter", "s3", "group", "list")
	assert.ErrorContains(t, err, "unknown adapter")

	_, err = run(t, vaultDir, "note", "query", "title +")
	assert.Error(t, err)
}

func TestCLI_SQLite(t *testing.T) {
	vaultDir := t.TempDir()
	mustRun(t, vaultDir, "--adapter", "sqlite", "group", "create", "Work")
	assert.Contains(t, mustRun(t, vaultDir, "--adapter", "sqlite", "group", "list"), "Work")
	assert.Equal(t, "alice\n", mustRun(t, vaultDir, "--adapter", "sqlite", "users"))
}

func TestCLI_Version(t *testing.T) {
	assert.Contains(t, mustRun(t, t.TempDir(), "version"), "notemode version")
}
