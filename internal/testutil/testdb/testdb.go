// Package testdb opens migrated in-memory databases for store tests.
package testdb

import (
	"database/sql"
	"testing"

	"cadetportal/internal/adapters/storage"
)

// Open returns a fresh in-memory SQLite database with every migration applied.
// The database is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(storage.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
