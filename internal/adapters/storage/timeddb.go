package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"ukccu/internal/adapters/http/perf"
)

// SQLDB is the database interface used by the SQL-backed stores.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is used when no threshold is configured.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB logs slow statements and feeds a perf collector.
type TimedDB struct {
	db        SQLDB
	collector *perf.Collector
	slow      time.Duration
}

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid connection; collector may be nil
// POST: slow <= 0 falls back to DefaultSlowQuery
func NewTimedDB(db SQLDB, collector *perf.Collector, slow time.Duration) *TimedDB {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, slow: slow}
}

func (t *TimedDB) observe(op string, start time.Time) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= t.slow {
		slog.Warn("slow_query", "op", op, "duration_ms", ms)
	} else {
		slog.Debug("query", "op", op, "duration_ms", ms)
	}
	if t.collector != nil {
		t.collector.Record(perf.Sample{Kind: perf.KindQuery, Name: op, DurationMs: ms, At: start})
	}
}

// ExecContext times db.ExecContext.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe("exec", time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext times db.QueryContext. Row iteration is not included.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe("query", time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext times db.QueryRowContext.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe("query_row", time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}
