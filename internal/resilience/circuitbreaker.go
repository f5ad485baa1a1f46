// Package resilience keeps the answer pipeline alive when a transcription or
// generation backend misbehaves.
//
// [CircuitBreaker] stops the pipeline from hammering a backend that keeps
// failing: after enough consecutive errors it rejects calls outright, then
// lets a few probes through once a cooldown has passed. [STTFallback] strings
// transcription backends together behind one breaker each, so a dead primary
// costs a skipped call instead of a lost segment.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without invoking the backend while a breaker is
// open and its cooldown has not yet passed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is a breaker's operating mode.
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen] until the cooldown
	// passes.
	StateOpen

	// StateHalfOpen forwards a limited number of probe calls; their outcome
	// decides between closing and re-opening.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes a [CircuitBreaker]. Zero fields take defaults.
type CircuitBreakerConfig struct {
	// Name labels the breaker in log output, typically the backend name
	// ("deepgram", "openai").
	Name string

	// MaxFailures is how many consecutive failures open the breaker.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is the open-state cooldown before probing resumes.
	// Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is the probe budget in the half-open state. Default: 3.
	HalfOpenMax int
}

// CircuitBreaker is a three-state breaker (closed, open, half-open) guarding
// one backend. Safe for concurrent use.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu         sync.Mutex
	state      State
	failures   int
	openedAt   time.Time
	probes     int
	probeFails int
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
	}
}

// Execute runs fn unless the breaker rejects the call, and folds fn's outcome
// into the breaker state.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probing, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	cb.settle(err, probing)
	return err
}

// admit decides whether a call may proceed, performing the open → half-open
// transition when the cooldown has passed. It reports whether the admitted
// call counts against the probe budget.
func (cb *CircuitBreaker) admit() (probing bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		cb.probeFails = 0
		slog.Info("backend circuit half-open, probing", "backend", cb.name)

	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.probes++
		return true, nil
	}
	return false, nil
}

// settle records a call outcome.
func (cb *CircuitBreaker) settle(err error, probing bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.openedAt = time.Now()
		if probing {
			// One failed probe re-opens immediately.
			cb.probeFails++
			cb.state = StateOpen
			cb.failures = cb.maxFailures
			slog.Warn("backend circuit re-opened", "backend", cb.name)
			return
		}
		cb.failures++
		if cb.failures >= cb.maxFailures {
			cb.state = StateOpen
			slog.Warn("backend circuit opened",
				"backend", cb.name, "consecutive_failures", cb.failures)
		}
		return
	}

	if probing {
		if cb.probes-cb.probeFails >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
			cb.probes = 0
			cb.probeFails = 0
			slog.Info("backend circuit closed", "backend", cb.name)
		}
		return
	}
	cb.failures = 0
}

// State reports the breaker's mode. An open breaker whose cooldown has passed
// reports [StateHalfOpen]; the stored transition happens on the next Execute.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}
