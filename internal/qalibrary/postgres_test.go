package qalibrary_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/answercue/answercue/internal/qalibrary"
	"github.com/answercue/answercue/pkg/types"
)

const testEmbeddingDim = 4

func TestSchemaBakesDimension(t *testing.T) {
	ddl := qalibrary.Schema(1536)
	if !strings.Contains(ddl, "vector(1536)") {
		t.Errorf("schema does not contain vector(1536):\n%s", ddl)
	}
	if !strings.Contains(ddl, "hnsw") {
		t.Error("schema missing hnsw index")
	}
}

// testDSN returns the test database DSN from the environment, or skips the
// test if ANSWERCUE_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("ANSWERCUE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ANSWERCUE_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestLibrary creates a fresh [qalibrary.PostgresLibrary] with a clean
// qa_pairs table.
func newTestLibrary(t *testing.T) *qalibrary.PostgresLibrary {
	t.Helper()
	ctx := context.Background()

	cfg, err := pgxpool.ParseConfig(testDSN(t))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// best-effort: pgvector may not be installed yet on a fresh DB
		_ = pgxvec.RegisterTypes(ctx, conn)
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS qa_pairs CASCADE"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	lib := qalibrary.NewPostgresLibrary(pool, testEmbeddingDim)
	if err := lib.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return lib
}

func TestPostgresLibraryRoundTrip(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	pair := types.QAPair{
		ID:       "p1",
		Question: "What are your strengths?",
		Answer:   "Calm under pressure.",
		Kind:     types.QuestionGeneral,
	}
	if err := lib.Save(ctx, "alice", pair, []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	pairs, err := lib.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Question != pair.Question {
		t.Fatalf("pairs = %+v, want the saved pair", pairs)
	}

	// Other users must not see it.
	others, err := lib.ListByUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListByUser(bob): %v", err)
	}
	if len(others) != 0 {
		t.Errorf("bob sees %d pairs, want 0", len(others))
	}
}

func TestPostgresLibrarySearchSimilar(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	save := func(id, question string, emb []float32) {
		t.Helper()
		err := lib.Save(ctx, "alice", types.QAPair{ID: id, Question: question, Answer: "a"}, emb)
		if err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	save("near", "Tell me about your strengths", []float32{1, 0, 0, 0})
	save("far", "Where do you see yourself in five years?", []float32{0, 1, 0, 0})
	save("noemb", "Unembedded pair", nil)

	results, err := lib.SearchSimilar(ctx, "alice", []float32{0.9, 0.1, 0, 0}, 5, 0.8)
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 1 || results[0].Pair.ID != "near" {
		t.Fatalf("results = %+v, want only the near pair", results)
	}
	if results[0].Similarity < 0.8 {
		t.Errorf("similarity = %f, want >= threshold", results[0].Similarity)
	}
}

func TestPostgresLibraryDeleteScopedToUser(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	pair := types.QAPair{ID: "p1", Question: "q", Answer: "a"}
	if err := lib.Save(ctx, "alice", pair, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A different user cannot delete it.
	if err := lib.Delete(ctx, "bob", "p1"); err != nil {
		t.Fatalf("Delete as bob: %v", err)
	}
	pairs, _ := lib.ListByUser(ctx, "alice")
	if len(pairs) != 1 {
		t.Fatal("pair deleted by the wrong user")
	}

	if err := lib.Delete(ctx, "alice", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	pairs, _ = lib.ListByUser(ctx, "alice")
	if len(pairs) != 0 {
		t.Error("pair still present after delete")
	}
}
