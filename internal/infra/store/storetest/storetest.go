// Package storetest opens migrated throwaway stores for tests.
package storetest

import (
	"context"
	"testing"

	"weekly-quiz-service/internal/infra/store"
)

// memoryDSN keeps the database private to the single pooled connection.
const memoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// Open returns a migrated in-memory SQLite store closed at test cleanup.
func Open(t testing.TB) *store.Store {
	t.Helper()
	db, err := store.Open("sqlite", memoryDSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	s := store.New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
