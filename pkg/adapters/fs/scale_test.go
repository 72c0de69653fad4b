package fs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monodeaf/notemode/pkg/adapters/fs"
	"github.com/monodeaf/notemode/pkg/core"
)

const scaleNotes = 10000

// seedVault writes one user snapshot with scaleNotes notes spread over
// twenty groups and a year of creation times.
func seedVault(b *testing.B, format string) string {
	b.Helper()
	dir := b.TempDir()
	repo := fs.NewRepository(fs.Config{Path: dir, Format: format})
	require.NoError(b, repo.Initialize(context.Background()))

	store := core.NewStore(repo, core.StoreConfig{Location: time.UTC})
	require.NoError(b, store.SetUser(context.Background(), "bench"))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for g := 0; g < 20; g++ {
		group := store.CreateGroup(fmt.Sprintf("Group %d", g), core.Background{})
		notes := make([]core.ImportedNote, 0, scaleNotes/20)
		for i := 0; i < scaleNotes/20; i++ {
			notes = append(notes, core.ImportedNote{
				Title:     fmt.Sprintf("note %d-%d", g, i),
				Content:   "<p>Content payload</p>",
				CreatedAt: start.Add(time.Duration(g*7919+i*977) * time.Minute),
			})
		}
		store.ImportNotes(group.ID, notes)
	}
	require.NoError(b, store.Save(context.Background()))
	return dir
}

// BenchmarkLoad_10k_Notes measures reading and decoding a large snapshot.
// Run with: go test -bench=10k -benchmem -run=^$ ./pkg/adapters/fs/...
func BenchmarkLoad_10k_Notes(b *testing.B) {
	for _, format := range []string{".json", ".yaml"} {
		b.Run(format, func(b *testing.B) {
			dir := seedVault(b, format)
			store := core.NewStore(fs.NewRepository(fs.Config{Path: dir, Format: format}), core.StoreConfig{Location: time.UTC})
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				require.NoError(b, store.SetUser(ctx, "bench"))
				store.ClearUser()
			}
		})
	}
}

// BenchmarkStats_10k_Notes measures the statistics engine over a loaded store.
func BenchmarkStats_10k_Notes(b *testing.B) {
	dir := seedVault(b, ".json")
	store := core.NewStore(fs.NewRepository(fs.Config{Path: dir}), core.StoreConfig{
		Location: time.UTC,
		Clock:    func() time.Time { return time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(b, store.SetUser(context.Background(), "bench"))

	b.Run("TotalStats", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = store.TotalStats()
		}
	})
	b.Run("DailyStats_30", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = store.DailyStats(30)
		}
	})
}
