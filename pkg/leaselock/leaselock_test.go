package leaselock

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// lockRow mirrors one app_locks row.
type lockRow struct {
	lockKey   string
	lockedBy  string
	expiresAt time.Time
}

// fakeLockTable emulates the app_locks statements over a map so the
// package's SQL is exercised end to end without a database.
type fakeLockTable struct {
	rows map[string]lockRow
}

func newFakeLockTable() *fakeLockTable {
	return &fakeLockTable{rows: make(map[string]lockRow)}
}

type fakeRow struct {
	key string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

func (f *fakeLockTable) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	key := args[0].(string)
	token := args[1].(string)
	ttl := time.Duration(args[2].(int64)) * time.Millisecond

	switch sql {
	case tryAcquireSQL:
		row, exists := f.rows[key]
		if exists && row.expiresAt.After(time.Now()) && row.lockedBy != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		f.rows[key] = lockRow{lockKey: key, lockedBy: token, expiresAt: time.Now().Add(ttl)}
		return fakeRow{key: key}
	case renewSQL:
		row, exists := f.rows[key]
		if !exists || row.lockedBy != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		row.expiresAt = time.Now().Add(ttl)
		f.rows[key] = row
		return fakeRow{key: key}
	default:
		return fakeRow{err: errors.New("unexpected query")}
	}
}

func (f *fakeLockTable) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if sql != releaseSQL {
		return pgconn.CommandTag{}, errors.New("unexpected exec")
	}
	key := args[0].(string)
	token := args[1].(string)
	if row, ok := f.rows[key]; ok && row.lockedBy == token {
		delete(f.rows, key)
	}
	return pgconn.CommandTag{}, nil
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	table := newFakeLockTable()
	client := &Client{db: table}

	lease, err := client.Acquire(context.Background(), "import_motion", Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, ok := table.rows["import_motion"]; !ok {
		t.Fatalf("Acquire() did not insert a lock row")
	}
	if table.rows["import_motion"].lockedBy != lease.Token {
		t.Fatalf("lock row locked_by = %q, want lease token %q", table.rows["import_motion"].lockedBy, lease.Token)
	}

	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, ok := table.rows["import_motion"]; ok {
		t.Fatalf("Release() left the lock row behind")
	}
}

func TestAcquireHeldLockIsBusy(t *testing.T) {
	table := newFakeLockTable()
	client := &Client{db: table}

	lease, err := client.Acquire(context.Background(), "import_motion", Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer lease.Release(context.Background())

	_, err = client.Acquire(context.Background(), "import_motion", Options{TTL: time.Minute})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire() error = %v, want ErrBusy", err)
	}
}

func TestAcquireExpiredLockSucceeds(t *testing.T) {
	table := newFakeLockTable()
	table.rows["import_motion"] = lockRow{
		lockKey:   "import_motion",
		lockedBy:  "stale-token",
		expiresAt: time.Now().Add(-time.Minute),
	}
	client := &Client{db: table}

	lease, err := client.Acquire(context.Background(), "import_motion", Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Acquire() over expired lock error = %v", err)
	}
	defer lease.Release(context.Background())

	if table.rows["import_motion"].lockedBy == "stale-token" {
		t.Fatalf("Acquire() did not take over the expired lock")
	}
}

func TestWithLeaseRunsAndReleases(t *testing.T) {
	table := newFakeLockTable()
	client := &Client{db: table}

	ran := false
	err := client.WithLease(context.Background(), "import_motion", Options{TTL: time.Minute}, func(ctx context.Context) error {
		ran = true
		if _, ok := table.rows["import_motion"]; !ok {
			t.Fatalf("lock row missing while lease held")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLease() error = %v", err)
	}
	if !ran {
		t.Fatalf("WithLease() did not run fn")
	}
	if _, ok := table.rows["import_motion"]; ok {
		t.Fatalf("WithLease() left the lock row behind")
	}
}

func TestLockSQLMatchesMigration(t *testing.T) {
	migration, err := os.ReadFile("../../internal/db/migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}
	schema := string(migration)

	for _, column := range []string{"lock_key", "locked_by", "expires_at"} {
		if !strings.Contains(schema, column) {
			t.Fatalf("migration does not declare app_locks column %q", column)
		}
		for name, sql := range map[string]string{
			"tryAcquireSQL": tryAcquireSQL,
			"renewSQL":      renewSQL,
		} {
			if !strings.Contains(sql, column) {
				t.Fatalf("%s does not reference column %q", name, column)
			}
		}
	}
}
