// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to verify that callers submit the expected segments and to
// feed controlled transcripts without a live transcription backend.
package mock

import (
	"context"
	"sync"

	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/types"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Seg is the segment passed to Transcribe.
	Seg stt.Segment
}

// Provider is a mock implementation of stt.Provider.
// Zero values cause Transcribe to return an empty transcript and nil error.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe when TranscribeFunc is nil.
	Transcript types.Transcript

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeFunc, if set, overrides Transcript/Err and is invoked per call.
	TranscribeFunc func(ctx context.Context, seg stt.Segment) (types.Transcript, error)

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(ctx context.Context, seg stt.Segment) (types.Transcript, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Ctx: ctx, Seg: seg})
	fn := p.TranscribeFunc
	t, err := p.Transcript, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, seg)
	}
	return t, err
}

// CallCount returns the number of recorded Transcribe calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
