package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"cadetportal/internal/ctxutil"
	"cadetportal/internal/metrics"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and record latency histograms.
type TimedDB struct {
	db        *sql.DB
	threshold time.Duration
	observe   func(op string, d time.Duration)
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection; threshold <= 0 selects DefaultSlowQuery
// POST: Returns a TimedDB that logs slow queries and feeds the query histogram
func NewTimedDB(db *sql.DB, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, threshold: threshold, observe: metrics.ObserveQuery}
}

// RawDB returns the underlying *sql.DB (needed for migrations and shutdown).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// maxLoggedStatement bounds the SQL text attached to slow query logs.
const maxLoggedStatement = 120

func (t *TimedDB) record(ctx context.Context, op, query string, start time.Time, err error) {
	d := time.Since(start)
	if t.observe != nil {
		t.observe(op, d)
	}
	if d < t.threshold {
		return
	}
	attrs := []any{"op", op, "duration_ms", float64(d.Microseconds()) / 1000.0, "statement", statement(query)}
	if id, ok := ctxutil.RequestID(ctx); ok {
		attrs = append(attrs, "request_id", id)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Warn("slow_query", attrs...)
}

// statement collapses whitespace and truncates query for logging.
func statement(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > maxLoggedStatement {
		q = q[:maxLoggedStatement] + "..."
	}
	return q
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.record(ctx, "exec", query, start, err)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.record(ctx, "query", query, start, err)
	return rows, err
}

// QueryRowContext defers errors to Scan, so slow rows are logged without one.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.record(ctx, "query_row", query, start, nil)
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.record(ctx, "begin_tx", "BEGIN", start, err)
	return tx, err
}

// PingContext backs the health check.
func (t *TimedDB) PingContext(ctx context.Context) error {
	start := time.Now()
	err := t.db.PingContext(ctx)
	t.record(ctx, "ping", "PING", start, err)
	return err
}

func (t *TimedDB) Close() error {
	return t.db.Close()
}
