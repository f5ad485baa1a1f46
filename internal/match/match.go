// Package match implements approximate question comparison using Jaro-Winkler
// string similarity over normalized text.
//
// Matching proceeds in two stages:
//
//  1. Normalization: both strings are lowercased, stripped of punctuation,
//     and whitespace-collapsed, so that "What are your strengths?" and
//     "what are your strengths" compare equal.
//
//  2. Jaro-Winkler scoring: the normalized strings are compared with
//     [matchr.JaroWinkler], yielding a score in [0, 1] where 1 is an exact
//     match. Two thresholds shape downstream decisions: scores at or above
//     the identical threshold (default 0.95) are treated as the same question
//     and allow scans to stop early, while scores at or above the acceptance
//     threshold (default 0.85) are close enough to reuse a prepared answer.
package match

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

const (
	defaultIdenticalThreshold = 0.95
	defaultAcceptThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithIdenticalThreshold sets the minimum score at which two questions are
// considered the same question. Default: 0.95.
func WithIdenticalThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.identicalThreshold = threshold
	}
}

// WithAcceptThreshold sets the minimum score at which a prepared answer is
// close enough to reuse. Default: 0.85.
func WithAcceptThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.acceptThreshold = threshold
	}
}

// Matcher scores question similarity. All methods are safe for concurrent
// use — the Matcher is read-only after construction.
type Matcher struct {
	identicalThreshold float64
	acceptThreshold    float64
}

// New returns a new [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		identicalThreshold: defaultIdenticalThreshold,
		acceptThreshold:    defaultAcceptThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Similarity returns the Jaro-Winkler similarity of the two questions after
// normalization, in [0, 1]. Two empty (or punctuation-only) strings score 0.
func (m *Matcher) Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return matchr.JaroWinkler(na, nb, false)
}

// Identical reports whether the two questions score at or above the
// identical threshold.
func (m *Matcher) Identical(a, b string) bool {
	return m.Similarity(a, b) >= m.identicalThreshold
}

// IdenticalThreshold returns the configured early-exit threshold.
func (m *Matcher) IdenticalThreshold() float64 { return m.identicalThreshold }

// AcceptThreshold returns the configured acceptance threshold.
func (m *Matcher) AcceptThreshold() float64 { return m.acceptThreshold }

// Normalize canonicalizes a question for comparison: lowercase, punctuation
// removed, runs of whitespace collapsed to single spaces, leading and
// trailing whitespace trimmed.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Punctuation and symbols are dropped entirely.
		}
	}
	return strings.TrimRight(b.String(), " ")
}
