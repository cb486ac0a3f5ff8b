package testsupport

import (
	"context"
	"testing"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddRoot registers an active root for tests using the provided store.
func AddRoot(t testing.TB, store *catalog.Store, path string) *catalog.Root {
	t.Helper()

	root, err := store.AddRoot(context.Background(), path, "")
	if err != nil {
		t.Fatalf("store.AddRoot: %v", err)
	}
	return root
}

// NewEntry inserts an online entry for tests and returns it with its id.
func NewEntry(t testing.TB, store *catalog.Store, entry *catalog.Entry) *catalog.Entry {
	t.Helper()

	if entry.Status == "" {
		entry.Status = catalog.StatusOnline
	}
	if entry.ModTime.IsZero() {
		entry.ModTime = time.Now().UTC().Truncate(time.Second)
	}
	inserted, err := store.InsertEntry(context.Background(), entry)
	if err != nil {
		t.Fatalf("store.InsertEntry: %v", err)
	}
	return inserted
}
