// Package mock provides an in-memory test double for the qalibrary.Library
// interface.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/answercue/answercue/internal/qalibrary"
	"github.com/answercue/answercue/pkg/types"
)

// stored pairs a saved QAPair with its embedding.
type stored struct {
	pair      types.QAPair
	embedding []float32
}

// Library is a mock implementation of qalibrary.Library backed by in-memory
// maps. Set Err to inject a failure on every method.
type Library struct {
	mu    sync.Mutex
	pairs map[string]map[string]stored // userID -> pairID -> entry

	// Err, if non-nil, is returned by every method.
	Err error

	// SearchCalls records the user IDs passed to SearchSimilar, in order.
	SearchCalls []string

	// ListCalls records the user IDs passed to ListByUser, in order.
	ListCalls []string
}

// Compile-time interface check.
var _ qalibrary.Library = (*Library)(nil)

// Save stores the pair under the user.
func (l *Library) Save(_ context.Context, userID string, pair types.QAPair, embedding []float32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	if l.pairs == nil {
		l.pairs = make(map[string]map[string]stored)
	}
	if l.pairs[userID] == nil {
		l.pairs[userID] = make(map[string]stored)
	}
	l.pairs[userID][pair.ID] = stored{pair: pair, embedding: embedding}
	return nil
}

// ListByUser returns the user's pairs sorted by ID for determinism.
func (l *Library) ListByUser(_ context.Context, userID string) ([]types.QAPair, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ListCalls = append(l.ListCalls, userID)
	if l.Err != nil {
		return nil, l.Err
	}
	out := []types.QAPair{}
	for _, s := range l.pairs[userID] {
		out = append(out, s.pair)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SearchSimilar computes cosine similarity against the stored embeddings.
// Pairs saved without an embedding are skipped, matching the real store.
func (l *Library) SearchSimilar(_ context.Context, userID string, embedding []float32, topK int, minSimilarity float64) ([]qalibrary.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.SearchCalls = append(l.SearchCalls, userID)
	if l.Err != nil {
		return nil, l.Err
	}
	results := []qalibrary.Result{}
	for _, s := range l.pairs[userID] {
		if s.embedding == nil {
			continue
		}
		sim := cosine(embedding, s.embedding)
		if sim >= minSimilarity {
			results = append(results, qalibrary.Result{Pair: s.pair, Similarity: sim})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes the pair if present.
func (l *Library) Delete(_ context.Context, userID, pairID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	delete(l.pairs[userID], pairID)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
