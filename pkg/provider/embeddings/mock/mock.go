// Package mock is a canned-vector test double for the embeddings.Provider
// interface.
package mock

import (
	"context"
	"sync"

	"github.com/answercue/answercue/pkg/provider/embeddings"
)

// EmbedCall records one Embed invocation.
type EmbedCall struct {
	Ctx  context.Context
	Text string
}

// Provider implements embeddings.Provider with fixed responses. Set the
// response fields before use; call records accumulate under an internal lock.
type Provider struct {
	// EmbedResult is returned by Embed unless EmbedFunc is set.
	EmbedResult []float32

	// EmbedErr is returned by Embed alongside EmbedResult.
	EmbedErr error

	// EmbedFunc, when set, handles Embed entirely. Calls are still recorded.
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	mu sync.Mutex

	// EmbedCalls records every Embed invocation in order.
	EmbedCalls []EmbedCall
}

var _ embeddings.Provider = (*Provider)(nil)

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.EmbedCalls = append(p.EmbedCalls, EmbedCall{Ctx: ctx, Text: text})
	p.mu.Unlock()

	if p.EmbedFunc != nil {
		return p.EmbedFunc(ctx, text)
	}
	return p.EmbedResult, p.EmbedErr
}

func (p *Provider) Dimensions() int {
	return p.DimensionsValue
}

// CallCount returns how many times Embed was invoked.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.EmbedCalls)
}
