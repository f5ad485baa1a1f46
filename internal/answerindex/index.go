// Package answerindex maintains a per-session lookup structure over the
// user's prepared question/answer pairs.
//
// Lookup is two-tiered: an O(1) exact probe on the normalized question text,
// then a linear fuzzy scan that exits early once a candidate clears the
// identical threshold. An empty index is valid and simply never matches.
package answerindex

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/answercue/answercue/internal/match"
	"github.com/answercue/answercue/pkg/types"
)

// Kind describes how a lookup matched.
type Kind int

const (
	// KindNone means no prepared answer cleared the acceptance threshold.
	KindNone Kind = iota

	// KindExact means the normalized question matched a prepared one verbatim.
	KindExact

	// KindFuzzy means a prepared question scored at or above the acceptance
	// threshold.
	KindFuzzy
)

// String returns the human-readable name of the match kind.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the result of a successful lookup.
type Match struct {
	// Pair is the prepared pair that answered the question.
	Pair types.QAPair

	// Kind reports whether the match was exact or fuzzy.
	Kind Kind

	// Score is the similarity score. 1.0 for exact matches.
	Score float64
}

// UsageRecorder persists the fact that a prepared pair answered a live
// question. Implementations must tolerate being called concurrently.
type UsageRecorder interface {
	RecordAnswerUse(ctx context.Context, pairID string) error
}

// Index is the per-session answer lookup table. Safe for concurrent use;
// Build replaces the contents wholesale while lookups hold a read lock.
type Index struct {
	matcher    *match.Matcher
	similarity func(a, b string) float64
	recorder   UsageRecorder

	mu      sync.RWMutex
	exact   map[string]int // normalized question → entries index
	entries []entry
}

type entry struct {
	normalized string
	pair       types.QAPair
	useCount   int
	lastUsed   time.Time
}

// Option is a functional option for configuring an [Index].
type Option func(*Index)

// WithUsageRecorder attaches a persistent usage recorder. Recording happens
// asynchronously on [Index.RecordUse]; failures are logged, never surfaced.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(idx *Index) {
		idx.recorder = r
	}
}

// WithSimilarityFunc overrides the scoring function used by the fuzzy scan.
// Inputs are normalized question strings. Intended for deterministic
// threshold testing.
func WithSimilarityFunc(fn func(a, b string) float64) Option {
	return func(idx *Index) {
		idx.similarity = fn
	}
}

// New returns an empty [Index] using the given matcher for fuzzy scoring.
func New(matcher *match.Matcher, opts ...Option) *Index {
	idx := &Index{
		matcher:    matcher,
		similarity: matcher.Similarity,
		exact:      map[string]int{},
	}
	for _, o := range opts {
		o(idx)
	}
	return idx
}

// Build replaces the index contents with the given pairs. Rebuilding from the
// same input yields the same lookup behaviour; later duplicates of an already
// indexed normalized question are dropped. Pairs whose question normalizes to
// the empty string are skipped.
func (idx *Index) Build(pairs []types.QAPair) {
	entries := make([]entry, 0, len(pairs))
	exact := make(map[string]int, len(pairs))
	for _, p := range pairs {
		norm := match.Normalize(p.Question)
		if norm == "" {
			continue
		}
		if _, dup := exact[norm]; dup {
			continue
		}
		exact[norm] = len(entries)
		entries = append(entries, entry{normalized: norm, pair: p})
	}

	idx.mu.Lock()
	idx.exact = exact
	idx.entries = entries
	idx.mu.Unlock()
}

// Len returns the number of indexed pairs.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Find looks up a prepared answer for the question. The exact probe always
// wins over fuzzy candidates regardless of their scores. The fuzzy scan keeps
// the best candidate at or above the acceptance threshold and stops early
// when one clears the identical threshold. ok is false when nothing matched.
func (idx *Index) Find(question string) (Match, bool) {
	norm := match.Normalize(question)
	if norm == "" {
		return Match{}, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if i, ok := idx.exact[norm]; ok {
		return Match{Pair: idx.entries[i].pair, Kind: KindExact, Score: 1}, true
	}

	best := Match{Kind: KindNone}
	for _, e := range idx.entries {
		score := idx.similarity(norm, e.normalized)
		if score < idx.matcher.AcceptThreshold() {
			continue
		}
		if score > best.Score {
			best = Match{Pair: e.pair, Kind: KindFuzzy, Score: score}
		}
		if score >= idx.matcher.IdenticalThreshold() {
			break
		}
	}
	if best.Kind == KindNone {
		return Match{}, false
	}
	return best, true
}

// RecordUse bumps the in-memory usage counter for the matched pair and, when
// a recorder is attached and the pair is persistent, writes through in a
// background goroutine so the answer is never delayed by storage latency.
func (idx *Index) RecordUse(m Match) {
	norm := match.Normalize(m.Pair.Question)

	idx.mu.Lock()
	if i, ok := idx.exact[norm]; ok {
		idx.entries[i].useCount++
		idx.entries[i].lastUsed = time.Now()
	}
	idx.mu.Unlock()

	if idx.recorder == nil || m.Pair.ID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := idx.recorder.RecordAnswerUse(ctx, m.Pair.ID); err != nil {
			slog.Warn("answer usage recording failed", "pair_id", m.Pair.ID, "error", err)
		}
	}()
}

// UseCount returns the in-memory usage counter for the pair with the given
// question, for introspection and tests.
func (idx *Index) UseCount(question string) int {
	norm := match.Normalize(question)
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if i, ok := idx.exact[norm]; ok {
		return idx.entries[i].useCount
	}
	return 0
}
