// Package credits tracks session allowances and prepared-answer usage.
//
// Accounting is deliberately coarse: a session checks the user's remaining
// allowance once at connect and consumes one unit once at close, regardless
// of how many questions were answered in between. All writes are best-effort
// from the caller's perspective — an unreachable store must never take the
// answer pipeline down with it.
package credits

import (
	"context"
	"errors"
)

// ErrNoAllowance is returned by Consume when the user has no sessions left.
var ErrNoAllowance = errors.New("credits: no session allowance remaining")

// Store provides allowance checks and usage accounting.
// Implementations must be safe for concurrent use.
type Store interface {
	// Remaining returns the number of sessions the user may still start.
	// Unknown users have a zero allowance, not an error.
	Remaining(ctx context.Context, userID string) (int, error)

	// Consume deducts one session from the user's allowance. Returns
	// [ErrNoAllowance] when nothing is left to deduct.
	Consume(ctx context.Context, userID string) error

	// RecordAnswerUse increments the usage counter of a stored Q&A pair after
	// it answered a live question. Recording against an unknown pair is not
	// an error.
	RecordAnswerUse(ctx context.Context, pairID string) error
}
