package session

import (
	"sync"
	"time"

	"github.com/answercue/answercue/internal/match"
)

// recentEntry is a single question retained for duplicate suppression.
type recentEntry struct {
	text string
	at   time.Time
}

// RecentQuestions retains the questions answered recently so an interviewer
// repeating or lightly rephrasing a question does not trigger a second answer.
// The window enforces both a maximum entry count and a maximum age; entries
// exceeding either limit are evicted on every [RecentQuestions.Add] call.
//
// All methods are safe for concurrent use.
type RecentQuestions struct {
	mu      sync.RWMutex
	entries []recentEntry
	maxSize int
	maxAge  time.Duration
	matcher *match.Matcher
}

// NewRecentQuestions creates a window retaining at most maxSize questions,
// each for at most maxAge. Questions are compared with the matcher's
// near-identical threshold.
func NewRecentQuestions(matcher *match.Matcher, maxSize int, maxAge time.Duration) *RecentQuestions {
	return &RecentQuestions{
		entries: make([]recentEntry, 0, maxSize),
		maxSize: maxSize,
		maxAge:  maxAge,
		matcher: matcher,
	}
}

// Seen reports whether a near-identical question is already in the window.
func (r *RecentQuestions) Seen(question string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-r.maxAge)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.at.Before(cutoff) {
			break
		}
		if r.matcher.Identical(question, e.text) {
			return true
		}
	}
	return false
}

// Add records a question and evicts entries that exceed the configured
// maximum size or age.
func (r *RecentQuestions) Add(question string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, recentEntry{text: question, at: time.Now()})
	r.evict()
}

// Reset drops every retained question. Used by the clear control message.
func (r *RecentQuestions) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]recentEntry, 0, r.maxSize)
}

// Len returns the number of retained questions, expired entries included
// until the next Add. Intended for testing.
func (r *RecentQuestions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// evict removes entries that are too old or exceed maxSize.
// Must be called with r.mu held.
//
// Survivors are copied to a fresh backing array so evicted entries do not pin
// memory for the lifetime of the session.
func (r *RecentQuestions) evict() {
	cutoff := time.Now().Add(-r.maxAge)

	start := 0
	for start < len(r.entries) && r.entries[start].at.Before(cutoff) {
		start++
	}

	keep := r.entries[start:]
	if len(keep) > r.maxSize {
		keep = keep[len(keep)-r.maxSize:]
	}

	if start > 0 || len(keep) < len(r.entries) {
		fresh := make([]recentEntry, len(keep), r.maxSize)
		copy(fresh, keep)
		r.entries = fresh
	}
}
