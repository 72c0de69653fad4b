package notemode_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/monodeaf/notemode"
	"github.com/monodeaf/notemode/pkg/core"
)

// Example_basic creates a group and a note in a filesystem vault, then opens
// the vault again and reads them back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "notemode-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()

	store, err := notemode.New(tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	if err := store.SetUser(ctx, "gopher"); err != nil {
		log.Fatal(err)
	}

	work := store.CreateGroup("Work", core.Background{})
	note, _ := store.CreateNote(work.ID, "standup")
	store.SaveNoteContent(work.ID, note.ID, "shipped the importer")

	// Mutations are persisted in the background.
	if err := store.Flush(ctx); err != nil {
		log.Fatal(err)
	}

	reopened, err := notemode.New(tmpDir, notemode.WithMustExist(true))
	if err != nil {
		log.Fatal(err)
	}
	if err := reopened.SetUser(ctx, "gopher"); err != nil {
		log.Fatal(err)
	}
	for _, g := range reopened.Groups() {
		for _, n := range reopened.Notes(g.ID) {
			fmt.Printf("%s / %s: %s\n", g.Name, n.Title, n.Content)
		}
	}
	// Output:
	// Work / standup: shipped the importer
}

// ExampleStore_TotalStats shows the activity summary of a user.
func ExampleStore_TotalStats() {
	ctx := context.Background()

	store, err := notemode.New("", notemode.WithAdapter(notemode.AdapterMemory), notemode.WithLocation(time.UTC))
	if err != nil {
		log.Fatal(err)
	}
	if err := store.SetUser(ctx, "gopher"); err != nil {
		log.Fatal(err)
	}

	journal := store.CreateGroup("Journal", core.Background{})
	store.ImportNotes(journal.ID, []core.ImportedNote{
		{Title: "mon", CreatedAt: time.Date(2024, 5, 6, 9, 15, 0, 0, time.UTC)},
		{Title: "tue", CreatedAt: time.Date(2024, 5, 7, 10, 0, 0, 0, time.UTC)},
		{Title: "tue again", CreatedAt: time.Date(2024, 5, 7, 22, 0, 0, 0, time.UTC)},
	})

	stats := store.TotalStats()
	fmt.Println("total:", stats.Total)
	fmt.Println("most active day:", stats.MostActiveDay)
	fmt.Println("peak:", stats.PeakActivityTime)
	fmt.Println("longest streak:", stats.LongestStreak)
	// Output:
	// total: 3
	// most active day: Tuesday
	// peak: 9:00 - 12:00
	// longest streak: 2
}
