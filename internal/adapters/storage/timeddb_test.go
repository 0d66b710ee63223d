package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ukccu/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_RecordsEveryCall checks each wrapped method lands in the collector.
func TestTimedDB_RecordsEveryCall(t *testing.T) {
	ctx := context.Background()
	collector := perf.NewCollector(16)
	tdb := NewTimedDB(openTimedTestDB(t), collector, time.Second)

	if _, err := tdb.ExecContext(ctx, `INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)`, "v1", "k", "x", "now"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT value FROM kv`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var v string
	if err := tdb.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, "k").Scan(&v); err != nil || v != "x" {
		t.Fatalf("QueryRowContext: %q %v", v, err)
	}

	if collector.Written() != 3 {
		t.Errorf("Written = %d, want 3", collector.Written())
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestQueries) != 3 {
		t.Errorf("expected exec, query and query_row stats, got %+v", snap.SlowestQueries)
	}
}

// TestTimedDB_NilCollector works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 0)
	if tdb.slow != DefaultSlowQuery {
		t.Errorf("slow = %v, want default", tdb.slow)
	}
	if _, err := tdb.ExecContext(context.Background(), `DELETE FROM kv`); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}
