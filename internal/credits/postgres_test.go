package credits_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/answercue/answercue/internal/credits"
)

// newTestStore creates a fresh [credits.PostgresStore] with a clean
// session_allowances table, or skips when ANSWERCUE_TEST_POSTGRES_DSN is not
// set.
func newTestStore(t *testing.T) (*credits.PostgresStore, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("ANSWERCUE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ANSWERCUE_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS session_allowances"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	store := credits.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store, pool
}

func TestPostgresStoreRemainingUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	remaining, err := store.Remaining(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 for unknown user", remaining)
	}
}

func TestPostgresStoreConsume(t *testing.T) {
	store, pool := newTestStore(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO session_allowances (user_id, remaining) VALUES ($1, $2)", "alice", 2)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Consume(ctx, "alice"); err != nil {
			t.Fatalf("Consume #%d: %v", i+1, err)
		}
	}
	remaining, err := store.Remaining(ctx, "alice")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}

	// A third consume has nothing left to deduct.
	if err := store.Consume(ctx, "alice"); !errors.Is(err, credits.ErrNoAllowance) {
		t.Errorf("Consume on empty allowance = %v, want ErrNoAllowance", err)
	}
}

func TestPostgresStoreConsumeUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Consume(context.Background(), "nobody"); !errors.Is(err, credits.ErrNoAllowance) {
		t.Errorf("Consume for unknown user = %v, want ErrNoAllowance", err)
	}
}
