// Package mock provides a test double for the credits.Store interface.
package mock

import (
	"context"
	"sync"

	"github.com/answercue/answercue/internal/credits"
)

// Store is a mock implementation of credits.Store backed by in-memory maps.
// Set Err fields to inject failures; otherwise operations behave like a real
// store with the configured balances.
type Store struct {
	mu sync.Mutex

	// Balances maps user IDs to their remaining allowance.
	Balances map[string]int

	// RemainingErr, if non-nil, is returned by Remaining.
	RemainingErr error

	// ConsumeErr, if non-nil, is returned by Consume.
	ConsumeErr error

	// RecordErr, if non-nil, is returned by RecordAnswerUse.
	RecordErr error

	// ConsumeCalls records the user IDs passed to Consume, in order.
	ConsumeCalls []string

	// RecordCalls records the pair IDs passed to RecordAnswerUse, in order.
	RecordCalls []string
}

// Compile-time interface check.
var _ credits.Store = (*Store)(nil)

// Remaining returns the configured balance for the user.
func (s *Store) Remaining(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemainingErr != nil {
		return 0, s.RemainingErr
	}
	return s.Balances[userID], nil
}

// Consume records the call and decrements the user's balance.
func (s *Store) Consume(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ConsumeCalls = append(s.ConsumeCalls, userID)
	if s.ConsumeErr != nil {
		return s.ConsumeErr
	}
	if s.Balances[userID] <= 0 {
		return credits.ErrNoAllowance
	}
	s.Balances[userID]--
	return nil
}

// RecordAnswerUse records the call.
func (s *Store) RecordAnswerUse(_ context.Context, pairID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RecordCalls = append(s.RecordCalls, pairID)
	return s.RecordErr
}

// ConsumeCount returns the number of Consume calls. Thread-safe.
func (s *Store) ConsumeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ConsumeCalls)
}
