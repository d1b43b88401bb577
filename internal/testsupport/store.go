package testsupport

import (
	"context"
	"testing"

	"curator/internal/config"
	"curator/internal/records"
)

// MustOpenStore opens a records store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.SQLiteStore {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AppendRecord adds a record to the store for tests and returns its position.
func AppendRecord(t testing.TB, store *records.SQLiteStore, rec *records.Record) int64 {
	t.Helper()

	position, err := store.Append(context.Background(), rec)
	if err != nil {
		t.Fatalf("store.Append: %v", err)
	}
	return position
}
