package storage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type opRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *opRecorder) observe(op string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func newRecordedDB(t *testing.T) (*TimedDB, *opRecorder) {
	t.Helper()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := &opRecorder{}
	tdb := NewTimedDB(db, time.Hour)
	tdb.observe = rec.observe
	return tdb, rec
}

// TestTimedDB_RecordsEachCall verifies every wrapped call is observed.
func TestTimedDB_RecordsEachCall(t *testing.T) {
	tdb, rec := newRecordedDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected hello, got %s", val)
	}

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	want := []string{"exec", "query", "query_row", "begin_tx"}
	if len(rec.ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, rec.ops)
	}
	for i := range want {
		if rec.ops[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], rec.ops[i])
		}
	}
}

// TestTimedDB_ErrorPassthrough verifies driver errors are returned unchanged.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb, rec := newRecordedDB(t)
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO missing VALUES (1)"); err == nil {
		t.Fatal("expected error for missing table")
	}
	if len(rec.ops) != 1 {
		t.Errorf("failed calls should still be observed, got %d", len(rec.ops))
	}
}

// TestTimedDB_DefaultThreshold verifies a non-positive threshold falls back to the default.
func TestTimedDB_DefaultThreshold(t *testing.T) {
	tdb := NewTimedDB(nil, 0)
	if tdb.threshold != DefaultSlowQuery {
		t.Errorf("expected %v, got %v", DefaultSlowQuery, tdb.threshold)
	}
}

func TestStatement(t *testing.T) {
	if got := statement("SELECT id\n\t  FROM test"); got != "SELECT id FROM test" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
	long := statement("SELECT " + strings.Repeat("x, ", 100) + "y FROM test")
	if len(long) != maxLoggedStatement+3 || !strings.HasSuffix(long, "...") {
		t.Errorf("expected truncated statement, got %d chars", len(long))
	}
}
