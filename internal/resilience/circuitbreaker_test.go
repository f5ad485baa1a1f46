package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("backend down")

func failNTimes(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}
}

func TestBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "deepgram"})
	if cb.maxFailures != 5 {
		t.Errorf("maxFailures = %d, want 5", cb.maxFailures)
	}
	if cb.resetTimeout != 30*time.Second {
		t.Errorf("resetTimeout = %v, want 30s", cb.resetTimeout)
	}
	if cb.halfOpenMax != 3 {
		t.Errorf("halfOpenMax = %d, want 3", cb.halfOpenMax)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
}

func TestBreakerForwardsWhileClosed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "deepgram", MaxFailures: 3})

	invoked := false
	if err := cb.Execute(func() error { invoked = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !invoked {
		t.Fatal("backend was not invoked")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "deepgram",
		MaxFailures:  3,
		ResetTimeout: time.Hour,
	})

	failNTimes(cb, 3)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	// Rejected without touching the backend.
	invoked := false
	err := cb.Execute(func() error { invoked = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if invoked {
		t.Fatal("backend invoked while circuit open")
	}
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "deepgram", MaxFailures: 3})

	failNTimes(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failNTimes(cb, 2)

	// Never three in a row, so still closed.
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "deepgram",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failNTimes(cb, 2)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	time.Sleep(15 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after cooldown", cb.State())
	}
}

func TestBreakerClosesAfterSuccessfulProbes(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "deepgram",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failNTimes(cb, 2)
	time.Sleep(15 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i+1, err)
		}
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful probes", cb.State())
	}
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "deepgram",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  3,
	})

	failNTimes(cb, 2)
	time.Sleep(15 * time.Millisecond)

	if err := cb.Execute(func() error { return errBackendDown }); err == nil {
		t.Fatal("expected error from failing probe")
	}

	// The failed probe restarts the cooldown, so the stored state is open.
	cb.mu.Lock()
	got := cb.state
	cb.mu.Unlock()
	if got != StateOpen {
		t.Fatalf("state = %v, want open after probe failure", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
