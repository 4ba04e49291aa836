package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withMockDriver(t *testing.T) string {
	t.Helper()
	dsn := "mock-" + t.Name()
	_, _, err := sqlmock.NewWithDSN(dsn)
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := openDB
	openDB = func(name, _ string) (*sql.DB, error) {
		return sql.Open("sqlmock", dsn)
	}
	t.Cleanup(func() { openDB = prev })
	return dsn
}

func resetSingleton() {
	singletonMu.Lock()
	singletonDB = nil
	singletonInFly = false
	singletonMu.Unlock()
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	withMockDriver(t)
	resetSingleton()
	t.Cleanup(resetSingleton)

	db1, err := GetSingleton(context.Background(), Postgres, "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton first: %v", err)
	}
	db2, err := GetSingleton(context.Background(), Postgres, "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected singleton pointers to match")
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	dsn := withMockDriver(t)
	var calls int32
	openDB = func(name, _ string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		return sql.Open("sqlmock", dsn)
	}
	resetSingleton()
	t.Cleanup(resetSingleton)

	if _, err := GetSingleton(context.Background(), Postgres, "ignored", DefaultLambdaOptions()); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db, err := GetSingleton(context.Background(), Postgres, "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestConnectAppliesMergedOptions(t *testing.T) {
	withMockDriver(t)

	opts := DefaultServerOptions().Merge(Options{MaxOpenConns: 7, PingTimeout: time.Second})
	if opts.MaxIdleConns != 5 || opts.ConnMaxLifetime != time.Hour {
		t.Fatalf("merge dropped defaults: %+v", opts)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected ping timeout 1s, got %s", opts.PingTimeout)
	}

	db, err := Connect(context.Background(), Postgres, "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect(context.Background(), Postgres, " ", Options{}); err == nil || err.Error() != "DATABASE_URL is empty" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Connect(context.Background(), SQLite, "", Options{}); err == nil || err.Error() != "SQLITE_PATH is empty" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteDSNAddsPragmas(t *testing.T) {
	if got := sqliteDSN("nav.db"); got != "nav.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite" {
		t.Fatalf("sqliteDSN = %s", got)
	}
	if got := sqliteDSN("file:nav.db?mode=rwc"); got[:len("file:nav.db?mode=rwc&")] != "file:nav.db?mode=rwc&" {
		t.Fatalf("sqliteDSN = %s", got)
	}
	if got := sqliteDSN("x.db?_pragma=journal_mode(WAL)"); got != "x.db?_pragma=journal_mode(WAL)" {
		t.Fatalf("sqliteDSN = %s", got)
	}
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":           Postgres,
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"sqlite":     SQLite,
		" sqlite3 ":  SQLite,
	}
	for raw, want := range cases {
		got, err := ParseDialect(raw)
		if err != nil {
			t.Fatalf("ParseDialect(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseDialect(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM tasks WHERE user_id = $1 AND note = 'cost $5' AND priority = $2"
	if got := Postgres.Rebind(q); got != q {
		t.Fatalf("postgres rebind changed query: %s", got)
	}
	want := "SELECT id FROM tasks WHERE user_id = ?1 AND note = 'cost $5' AND priority = ?2"
	if got := SQLite.Rebind(q); got != want {
		t.Fatalf("sqlite rebind = %s", got)
	}
}

func TestSQLiteMigrationsApply(t *testing.T) {
	ctx := context.Background()
	database, err := Connect(ctx, SQLite, ":memory:", DefaultServerOptions())
	if err != nil {
		t.Fatalf("Connect sqlite: %v", err)
	}
	defer database.Close()

	if err := RunMigrations(ctx, database, SQLite); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	version, err := MigrationVersion(ctx, database, SQLite)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version < 1 {
		t.Fatalf("expected version >= 1, got %d", version)
	}
	for _, table := range []string{"users", "business_plans", "tasks"} {
		var n int
		if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Fatalf("expected empty %s, got %d", table, n)
		}
	}
}
