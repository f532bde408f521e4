package storage

import (
	"database/sql"
	"sort"
	"testing"
	"time"
)

// openTestDB creates a migrated in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestMigrate_CreatesSchema verifies every table exists after migration.
func TestMigrate_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	got := getTableNames(t, db)
	want := []string{
		"account",
		"attendance_mark",
		"attendance_session",
		"cms_page",
		"duty_report",
		"goose_db_version",
		"notice",
		"pending_registration",
	}
	if len(got) != len(want) {
		t.Fatalf("expected tables %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// TestMigrate_Idempotent verifies a second run is a no-op.
func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("expected schema version 1, got %d", v)
	}
}

// TestMigrate_ForeignKeysEnabled verifies cascade deletes are active.
func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)
	var on int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("expected foreign_keys=1, got %d", on)
	}
}

// TestTimeRoundTrip verifies the stored time encoding.
func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 1, 15, 9, 30, 0, 123000000, time.UTC)
	if got := ParseTime(FormatTime(in)); !got.Equal(in) {
		t.Errorf("expected %v, got %v", in, got)
	}
	if NullableTime(time.Time{}) != nil {
		t.Error("zero time should encode as NULL")
	}
	if !ParseNullTime(sql.NullString{}).IsZero() {
		t.Error("NULL should decode to the zero time")
	}
	if !ParseTime("garbage").IsZero() {
		t.Error("unparseable value should decode to the zero time")
	}
}
