package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/answercue/answercue/internal/observe"
	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/types"
)

// ErrAllFailed is returned when every transcription backend in an
// [STTFallback] fails or has an open circuit breaker.
var ErrAllFailed = errors.New("all providers failed")

// FallbackConfig configures an [STTFallback].
type FallbackConfig struct {
	// CircuitBreaker is the per-backend breaker template; each backend gets
	// its own breaker named after it.
	CircuitBreaker CircuitBreakerConfig

	// Metrics receives per-backend request and error counts. Nil uses
	// [observe.DefaultMetrics].
	Metrics *observe.Metrics
}

// sttEntry is one transcription backend in the chain.
type sttEntry struct {
	name     string
	provider stt.Provider
	breaker  *CircuitBreaker
}

// STTFallback implements [stt.Provider] across an ordered chain of
// transcription backends. The first healthy backend serves each segment;
// backends whose breaker is open are skipped without a call.
//
// Safe for concurrent use once the chain is assembled; AddFallback must not
// race with Transcribe.
type STTFallback struct {
	entries []sttEntry
	cfg     FallbackConfig
	metrics *observe.Metrics
}

var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred
// backend.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	f := &STTFallback{cfg: cfg, metrics: cfg.Metrics}
	if f.metrics == nil {
		f.metrics = observe.DefaultMetrics()
	}
	f.AddFallback(primaryName, primary)
	return f
}

// AddFallback appends a backend, tried after all earlier ones.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	cbCfg := f.cfg.CircuitBreaker
	cbCfg.Name = name
	f.entries = append(f.entries, sttEntry{
		name:     name,
		provider: provider,
		breaker:  NewCircuitBreaker(cbCfg),
	})
}

// Transcribe submits the segment to the first backend whose breaker admits
// the call and whose transcription succeeds. Returns [ErrAllFailed] wrapped
// with the last error when the whole chain is down.
func (f *STTFallback) Transcribe(ctx context.Context, seg stt.Segment) (types.Transcript, error) {
	var lastErr error
	for i := range f.entries {
		e := &f.entries[i]

		var transcript types.Transcript
		err := e.breaker.Execute(func() error {
			var innerErr error
			transcript, innerErr = e.provider.Transcribe(ctx, seg)
			return innerErr
		})
		if err == nil {
			f.metrics.RecordProviderRequest(ctx, e.name, "stt", "ok")
			return transcript, nil
		}

		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping transcription backend (circuit open)", "backend", e.name)
			continue
		}
		f.metrics.RecordProviderRequest(ctx, e.name, "stt", "error")
		f.metrics.RecordProviderError(ctx, e.name, "stt")
		slog.Warn("transcription backend failed, trying next", "backend", e.name, "error", err)
	}
	return types.Transcript{}, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
