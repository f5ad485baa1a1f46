package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the allowance table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment. The
// qa_pairs table referenced by RecordAnswerUse is owned by the qalibrary
// package.
const Schema = `
CREATE TABLE IF NOT EXISTS session_allowances (
    user_id    TEXT PRIMARY KEY,
    remaining  INTEGER NOT NULL DEFAULT 0 CHECK (remaining >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// session_allowances table if it does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("credits: migrate: %w", err)
	}
	return nil
}

// Remaining implements [Store]. Unknown users report zero.
func (s *PostgresStore) Remaining(ctx context.Context, userID string) (int, error) {
	const query = `SELECT remaining FROM session_allowances WHERE user_id = $1`

	var remaining int
	err := s.db.QueryRow(ctx, query, userID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("credits: remaining for %q: %w", userID, err)
	}
	return remaining, nil
}

// Consume implements [Store]. The decrement is a single conditional UPDATE so
// concurrent sessions cannot drive the allowance negative.
func (s *PostgresStore) Consume(ctx context.Context, userID string) error {
	const query = `
		UPDATE session_allowances
		SET remaining = remaining - 1, updated_at = now()
		WHERE user_id = $1 AND remaining > 0`

	tag, err := s.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("credits: consume for %q: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoAllowance
	}
	return nil
}

// RecordAnswerUse implements [Store]. Missing pairs are ignored.
func (s *PostgresStore) RecordAnswerUse(ctx context.Context, pairID string) error {
	const query = `
		UPDATE qa_pairs
		SET use_count = use_count + 1, last_used = now()
		WHERE id = $1`

	if _, err := s.db.Exec(ctx, query, pairID); err != nil {
		return fmt.Errorf("credits: record answer use for %q: %w", pairID, err)
	}
	return nil
}
