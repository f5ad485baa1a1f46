// Package qalibrary persists a user's saved question/answer pairs.
//
// The library is the long-term half of answer lookup: pairs supplied inline
// over the wire live only for the session, while pairs saved here survive
// across sessions and carry an embedding for semantic search. Every query is
// scoped to a single user ID; there is no cross-user visibility.
package qalibrary

import (
	"context"

	"github.com/answercue/answercue/pkg/types"
)

// Result is a stored pair returned by semantic search together with its
// cosine similarity to the query (1 = identical direction, 0 = orthogonal).
type Result struct {
	Pair       types.QAPair
	Similarity float64
}

// Library provides access to a user's persistent Q&A pairs.
// Implementations must be safe for concurrent use.
type Library interface {
	// Save upserts a pair for the user. The embedding may be nil when no
	// embeddings provider is configured; such pairs are still returned by
	// ListByUser but never by SearchSimilar.
	Save(ctx context.Context, userID string, pair types.QAPair, embedding []float32) error

	// ListByUser returns all pairs saved by the user, most recently used
	// first. A user with no pairs gets an empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]types.QAPair, error)

	// SearchSimilar returns up to topK of the user's pairs whose question
	// embeddings are most similar to the query embedding, filtered to
	// similarity >= minSimilarity and ordered most similar first.
	SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int, minSimilarity float64) ([]Result, error)

	// Delete removes one of the user's pairs. Deleting an unknown pair is
	// not an error.
	Delete(ctx context.Context, userID string, pairID string) error
}
