package answerindex

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/answercue/answercue/internal/match"
	"github.com/answercue/answercue/pkg/types"
)

func testPairs() []types.QAPair {
	return []types.QAPair{
		{ID: "1", Question: "What are your strengths?", Answer: "Calm under pressure."},
		{ID: "2", Question: "Why do you want this job?", Answer: "Growth and impact."},
		{ID: "3", Question: "Tell me about yourself.", Answer: "Backend engineer, eight years."},
	}
}

func TestFindExactBeatsFuzzy(t *testing.T) {
	idx := New(match.New())
	idx.Build([]types.QAPair{
		{ID: "a", Question: "what are your strengths", Answer: "A"},
		{ID: "b", Question: "what are your strength", Answer: "B"},
	})

	m, ok := idx.Find("What are your strengths?")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Kind != KindExact {
		t.Errorf("match kind = %v, want exact", m.Kind)
	}
	if m.Pair.ID != "a" {
		t.Errorf("matched pair %q, want exact entry \"a\"", m.Pair.ID)
	}
	if m.Score != 1 {
		t.Errorf("exact score = %f, want 1", m.Score)
	}
}

func TestFindFuzzy(t *testing.T) {
	idx := New(match.New())
	idx.Build(testPairs())

	m, ok := idx.Find("what are your strength")
	if !ok {
		t.Fatal("expected a fuzzy match")
	}
	if m.Kind != KindFuzzy {
		t.Errorf("match kind = %v, want fuzzy", m.Kind)
	}
	if m.Pair.ID != "1" {
		t.Errorf("matched pair %q, want \"1\"", m.Pair.ID)
	}
}

func TestFindNoMatch(t *testing.T) {
	idx := New(match.New())
	idx.Build(testPairs())

	if _, ok := idx.Find("describe a distributed consensus protocol"); ok {
		t.Error("expected no match for unrelated question")
	}
	if _, ok := idx.Find(""); ok {
		t.Error("expected no match for empty question")
	}
}

func TestFindEmptyIndex(t *testing.T) {
	idx := New(match.New())
	if _, ok := idx.Find("what are your strengths"); ok {
		t.Error("expected no match from an empty index")
	}
}

func TestAcceptanceBoundary(t *testing.T) {
	// Deterministic scores pin the behaviour exactly at the thresholds.
	scores := map[string]float64{
		"at accept":       0.85,
		"below accept":    0.8499,
		"above identical": 0.96,
	}
	idx := New(match.New(), WithSimilarityFunc(func(q, _ string) float64 {
		return scores[q]
	}))
	idx.Build([]types.QAPair{{ID: "1", Question: "anything", Answer: "A"}})

	if m, ok := idx.Find("at accept"); !ok || m.Kind != KindFuzzy {
		t.Errorf("score exactly at the acceptance threshold should match, got ok=%v", ok)
	}
	if _, ok := idx.Find("below accept"); ok {
		t.Error("score below the acceptance threshold should not match")
	}
	if m, ok := idx.Find("above identical"); !ok || m.Score != 0.96 {
		t.Errorf("score above the identical threshold should match, got ok=%v match=%+v", ok, m)
	}
}

func TestFuzzyScanEarlyExit(t *testing.T) {
	// Once a candidate clears the identical threshold the scan must stop,
	// even if a later entry would score higher.
	var calls int
	idx := New(match.New(), WithSimilarityFunc(func(_, norm string) float64 {
		calls++
		if norm == "first" {
			return 0.97
		}
		return 0.99
	}))
	idx.Build([]types.QAPair{
		{ID: "1", Question: "first", Answer: "A"},
		{ID: "2", Question: "second", Answer: "B"},
	})

	m, ok := idx.Find("probe")
	if !ok || m.Pair.ID != "1" {
		t.Fatalf("expected early-exit match on first entry, got ok=%v match=%+v", ok, m)
	}
	if calls != 1 {
		t.Errorf("similarity called %d times, want 1", calls)
	}
}

func TestBuildIdempotent(t *testing.T) {
	idx := New(match.New())
	pairs := testPairs()
	idx.Build(pairs)
	first, ok1 := idx.Find("why do you want this job")
	idx.Build(pairs)
	second, ok2 := idx.Find("why do you want this job")

	if !ok1 || !ok2 {
		t.Fatal("expected matches before and after rebuild")
	}
	if first.Pair.ID != second.Pair.ID || first.Kind != second.Kind {
		t.Errorf("rebuild changed lookup result: %+v vs %+v", first, second)
	}
	if idx.Len() != len(pairs) {
		t.Errorf("Len = %d, want %d", idx.Len(), len(pairs))
	}
}

func TestBuildDropsDuplicatesAndEmpty(t *testing.T) {
	idx := New(match.New())
	idx.Build([]types.QAPair{
		{ID: "1", Question: "What are your strengths?", Answer: "first"},
		{ID: "2", Question: "what are your strengths", Answer: "second"},
		{ID: "3", Question: "???", Answer: "unreachable"},
	})
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	m, ok := idx.Find("what are your strengths")
	if !ok || m.Pair.ID != "1" {
		t.Errorf("expected first duplicate to win, got %+v", m)
	}
}

// recorderFunc adapts a function to the UsageRecorder interface.
type recorderFunc func(ctx context.Context, pairID string) error

func (f recorderFunc) RecordAnswerUse(ctx context.Context, pairID string) error {
	return f(ctx, pairID)
}

func TestRecordUse(t *testing.T) {
	var (
		mu       sync.Mutex
		recorded []string
	)
	done := make(chan struct{}, 1)
	idx := New(match.New(), WithUsageRecorder(recorderFunc(func(_ context.Context, id string) error {
		mu.Lock()
		recorded = append(recorded, id)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})))
	idx.Build(testPairs())

	m, ok := idx.Find("what are your strengths")
	if !ok {
		t.Fatal("expected a match")
	}
	idx.RecordUse(m)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("usage recorder was not invoked")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(recorded) != 1 || recorded[0] != "1" {
		t.Errorf("recorded = %v, want [1]", recorded)
	}
	if idx.UseCount("what are your strengths") != 1 {
		t.Errorf("UseCount = %d, want 1", idx.UseCount("what are your strengths"))
	}
}

func TestRecordUseInlinePairSkipsRecorder(t *testing.T) {
	called := make(chan struct{}, 1)
	idx := New(match.New(), WithUsageRecorder(recorderFunc(func(_ context.Context, _ string) error {
		called <- struct{}{}
		return nil
	})))
	idx.Build([]types.QAPair{{Question: "inline question", Answer: "A"}})

	m, _ := idx.Find("inline question")
	idx.RecordUse(m)

	select {
	case <-called:
		t.Error("recorder must not be invoked for pairs without an ID")
	case <-time.After(100 * time.Millisecond):
	}
}
