package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Replaces Snapshot", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "data.json")

		require.NoError(t, os.WriteFile(filename, []byte(`{"groups":{}}`), 0o644))
		require.NoError(t, writeFileAtomic(filename, []byte(`{"groups":{"g":{}}}`), 0o644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, `{"groups":{"g":{}}}`, string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "data.yaml"), []byte("groups: {}\n"), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "data.yaml", entries[0].Name())
		assert.False(t, isTempFile(entries[0].Name()))
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "data.json")
		assert.Error(t, writeFileAtomic(filename, []byte("{}"), 0o644))
	})
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, isTempFile("/vault/users/u1/"+TempFilePrefix+"123"))
	assert.False(t, isTempFile("/vault/users/u1/data.json"))
}
