package qalibrary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/answercue/answercue/pkg/types"
)

// Schema returns the SQL DDL for the qa_pairs table with the embedding
// dimension substituted. The dimension is baked into the column type at
// schema creation time; changing it later requires a manual migration.
// The pgvector extension must be available in the target database.
func Schema(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS qa_pairs (
    id         TEXT         PRIMARY KEY,
    user_id    TEXT         NOT NULL,
    question   TEXT         NOT NULL,
    answer     TEXT         NOT NULL,
    kind       TEXT         NOT NULL DEFAULT 'general',
    embedding  vector(%d),
    use_count  INTEGER      NOT NULL DEFAULT 0,
    last_used  TIMESTAMPTZ,
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_qa_pairs_user_id
    ON qa_pairs (user_id);

CREATE INDEX IF NOT EXISTS idx_qa_pairs_embedding
    ON qa_pairs USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// DB is the database interface used by [PostgresLibrary]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresLibrary is a [Library] backed by a PostgreSQL database with the
// pgvector extension. The connection must have pgvector types registered
// (see pgvector-go/pgx RegisterTypes).
type PostgresLibrary struct {
	db   DB
	dims int
}

// Compile-time interface check.
var _ Library = (*PostgresLibrary)(nil)

// NewPostgresLibrary creates a [PostgresLibrary] using the given connection
// or pool. embeddingDimensions must match the configured embeddings model
// (e.g. 1536 for OpenAI text-embedding-3-small).
func NewPostgresLibrary(db DB, embeddingDimensions int) *PostgresLibrary {
	return &PostgresLibrary{db: db, dims: embeddingDimensions}
}

// Migrate executes the [Schema] DDL, creating the qa_pairs table and its
// indexes if they do not already exist. Idempotent and safe to run on every
// application start.
func (l *PostgresLibrary) Migrate(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, Schema(l.dims)); err != nil {
		return fmt.Errorf("qalibrary: migrate: %w", err)
	}
	return nil
}

// Save implements [Library]. An existing pair with the same ID is completely
// replaced, except that use_count and last_used survive the upsert.
func (l *PostgresLibrary) Save(ctx context.Context, userID string, pair types.QAPair, embedding []float32) error {
	const q = `
		INSERT INTO qa_pairs (id, user_id, question, answer, kind, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		    user_id   = EXCLUDED.user_id,
		    question  = EXCLUDED.question,
		    answer    = EXCLUDED.answer,
		    kind      = EXCLUDED.kind,
		    embedding = EXCLUDED.embedding`

	var vec any
	if embedding != nil {
		vec = pgvector.NewVector(embedding)
	}
	kind := pair.Kind
	if !kind.IsValid() {
		kind = types.QuestionGeneral
	}
	if _, err := l.db.Exec(ctx, q, pair.ID, userID, pair.Question, pair.Answer, string(kind), vec); err != nil {
		return fmt.Errorf("qalibrary: save pair %q: %w", pair.ID, err)
	}
	return nil
}

// ListByUser implements [Library].
func (l *PostgresLibrary) ListByUser(ctx context.Context, userID string) ([]types.QAPair, error) {
	const q = `
		SELECT id, question, answer, kind, use_count, COALESCE(last_used, created_at)
		FROM   qa_pairs
		WHERE  user_id = $1
		ORDER  BY last_used DESC NULLS LAST, created_at DESC`

	rows, err := l.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("qalibrary: list for %q: %w", userID, err)
	}

	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.QAPair, error) {
		var (
			p    types.QAPair
			kind string
		)
		if err := row.Scan(&p.ID, &p.Question, &p.Answer, &kind, &p.UseCount, &p.LastUsed); err != nil {
			return types.QAPair{}, err
		}
		p.Kind = types.QuestionKind(kind)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("qalibrary: scan rows: %w", err)
	}
	if pairs == nil {
		pairs = []types.QAPair{}
	}
	return pairs, nil
}

// SearchSimilar implements [Library]. Pairs saved without an embedding are
// excluded. The similarity reported is 1 minus the cosine distance.
func (l *PostgresLibrary) SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int, minSimilarity float64) ([]Result, error) {
	const q = `
		SELECT id, question, answer, kind, use_count, COALESCE(last_used, created_at),
		       embedding <=> $2 AS distance
		FROM   qa_pairs
		WHERE  user_id = $1
		  AND  embedding IS NOT NULL
		  AND  embedding <=> $2 <= $3
		ORDER  BY distance
		LIMIT  $4`

	queryVec := pgvector.NewVector(embedding)
	maxDistance := 1 - minSimilarity

	rows, err := l.db.Query(ctx, q, userID, queryVec, maxDistance, topK)
	if err != nil {
		return nil, fmt.Errorf("qalibrary: search for %q: %w", userID, err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Result, error) {
		var (
			r        Result
			kind     string
			distance float64
		)
		if err := row.Scan(&r.Pair.ID, &r.Pair.Question, &r.Pair.Answer, &kind,
			&r.Pair.UseCount, &r.Pair.LastUsed, &distance); err != nil {
			return Result{}, err
		}
		r.Pair.Kind = types.QuestionKind(kind)
		r.Similarity = 1 - distance
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("qalibrary: scan rows: %w", err)
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// Delete implements [Library]. The user filter prevents deleting another
// user's pair by guessing its ID.
func (l *PostgresLibrary) Delete(ctx context.Context, userID, pairID string) error {
	const q = `DELETE FROM qa_pairs WHERE user_id = $1 AND id = $2`

	if _, err := l.db.Exec(ctx, q, userID, pairID); err != nil {
		return fmt.Errorf("qalibrary: delete pair %q: %w", pairID, err)
	}
	return nil
}
