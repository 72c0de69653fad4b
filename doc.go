// Package notemode is the Composition Root for notemode.
//
// It connects the note store (Domain Layer) with the storage adapters
// (Persistence Layer) using the Hexagonal Architecture pattern.
//
// A store holds the groups and notes of one user. Every mutation is applied
// in memory, visible at once, and the whole snapshot is then written through
// the adapter in the background. Statistics (daily counts, weekday and
// hour-of-day activity, streaks, per-group character counts) are derived from
// note creation times on demand.
//
// Adapters:
//
//   - fs: one JSON or YAML snapshot per user under <vault>/users/<uid>/, with
//     fsnotify based change watching.
//   - sqlite: one row per user (modernc.org/sqlite, no cgo).
//   - firebase: Realtime Database at users/<uid>/data.
//   - firestore: one document per user.
//   - memory: for tests and throwaway sessions.
//
// Usage:
//
//	store, err := notemode.New("./vault", notemode.WithLogger(logger))
//	if err != nil { ... }
//	if err := store.SetUser(ctx, "alice"); err != nil { ... }
//
//	work := store.CreateGroup("Work", core.Background{})
//	note, _ := store.CreateNote(work.ID, "standup")
//	store.SaveNoteContent(work.ID, note.ID, "shipped the importer")
//
//	// Wait for the background write before exiting.
//	err = store.Flush(ctx)
package notemode
