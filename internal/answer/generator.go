// Package answer produces streamed interview answers from an ordered list of
// language-model backends.
//
// Providers are tried in registration order. A provider is considered failed
// when its stream cannot start, errors before producing any text, or ends
// without producing any text; the next provider is then tried behind the
// failed one's circuit breaker. Once a provider has emitted text the answer
// is committed to it: a mid-stream failure ends the answer with the text
// produced so far rather than switching backends, so the reader never sees a
// mid-answer style break. When every backend fails the stream delivers a
// single generic holding message instead of an error.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/answercue/answercue/internal/observe"
	"github.com/answercue/answercue/internal/resilience"
	"github.com/answercue/answercue/pkg/provider/llm"
	"github.com/answercue/answercue/pkg/types"
)

// FallbackMessage is delivered as the entire answer when every generation
// backend fails.
const FallbackMessage = "I'm unable to pull up a tailored answer right now. " +
	"Take a breath, restate the question in your own words, and answer from your strongest relevant experience."

// errEmptyStream marks a provider that completed without emitting any text.
var errEmptyStream = errors.New("answer: provider returned an empty stream")

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 300
	defaultWordLimit   = 120
)

// Request carries the question and the candidate's context into generation.
type Request struct {
	// Question is the detected interview question, verbatim.
	Question string

	// Kind shapes the answer structure guidance in the prompt.
	Kind types.QuestionKind

	// Position and Company describe the role being interviewed for. Optional.
	Position string
	Company  string

	// Resume is the candidate's background text. Optional but strongly
	// improves personalization.
	Resume string

	// Notes are free-form talking points the candidate wants woven in. Optional.
	Notes string
}

// Option is a functional option for configuring a [Generator].
type Option func(*Generator)

// WithTemperature sets the sampling temperature for all providers. Default: 0.7.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithMaxTokens caps completion length for all providers. Default: 300.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// WithBreakerConfig overrides the circuit breaker settings applied per
// provider entry.
func WithBreakerConfig(cfg resilience.CircuitBreakerConfig) Option {
	return func(g *Generator) {
		g.breakerCfg = cfg
	}
}

// WithMetrics replaces the metrics instance generation is recorded to. The
// default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// entry pairs a named provider with its dedicated circuit breaker.
type entry struct {
	name     string
	provider llm.Provider
	breaker  *resilience.CircuitBreaker
}

// Generator streams answers with ordered provider failover. Safe for
// concurrent use once constructed; AddFallback must not race with
// GenerateStream.
type Generator struct {
	entries     []entry
	temperature float64
	maxTokens   int
	breakerCfg  resilience.CircuitBreakerConfig
	metrics     *observe.Metrics
}

// New creates a Generator with primary as the preferred backend.
func New(primary llm.Provider, primaryName string, opts ...Option) *Generator {
	g := Empty(opts...)
	g.add(primaryName, primary)
	return g
}

// Empty creates a Generator with no backends. Every request streams the
// generic fallback message. Used when no LLM is configured.
func Empty(opts ...Option) *Generator {
	g := &Generator{
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		metrics:     observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AddFallback registers an additional provider, tried after all earlier ones.
func (g *Generator) AddFallback(name string, provider llm.Provider) {
	g.add(name, provider)
}

func (g *Generator) add(name string, provider llm.Provider) {
	cbCfg := g.breakerCfg
	cbCfg.Name = name
	g.entries = append(g.entries, entry{
		name:     name,
		provider: provider,
		breaker:  resilience.NewCircuitBreaker(cbCfg),
	})
}

// Stream is a live answer in progress. Read Chunks until it closes, then
// Provider, Source, and Err report how the answer was produced.
type Stream struct {
	ch chan string

	mu       sync.Mutex
	provider string
	source   types.AnswerSource
	err      error
}

// Chunks returns the channel of incremental answer text. It is closed when
// the answer is complete (or abandoned due to cancellation).
func (s *Stream) Chunks() <-chan string { return s.ch }

// Provider returns the name of the backend that produced the answer. Empty
// when every backend failed. Valid once Chunks is closed.
func (s *Stream) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// Source reports whether the answer was generated or is the generic fallback
// message. Valid once Chunks is closed.
func (s *Stream) Source() types.AnswerSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Err returns the terminal error, if any. A non-nil Err alongside
// SourceGenerated means the answer was cut short mid-stream. Valid once
// Chunks is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setResult(provider string, source types.AnswerSource, err error) {
	s.mu.Lock()
	s.provider = provider
	s.source = source
	s.err = err
	s.mu.Unlock()
}

// GenerateStream starts answering the request. It never fails synchronously:
// provider errors surface through failover and, ultimately, the fallback
// message. The caller must drain Chunks.
func (g *Generator) GenerateStream(ctx context.Context, req Request) *Stream {
	s := &Stream{ch: make(chan string, 32)}
	go g.run(ctx, req, s)
	return s
}

func (g *Generator) run(ctx context.Context, req Request, s *Stream) {
	defer close(s.ch)

	start := time.Now()
	defer func() {
		g.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds())
	}()

	llmReq := llm.CompletionRequest{
		SystemPrompt: buildSystemPrompt(req),
		Messages: []types.Message{
			{Role: "user", Content: req.Question},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	var lastErr error
	for i := range g.entries {
		e := &g.entries[i]
		emitted := false

		err := e.breaker.Execute(func() error {
			chunks, err := e.provider.StreamCompletion(ctx, llmReq)
			if err != nil {
				return fmt.Errorf("start stream: %w", err)
			}
			for c := range chunks {
				if c.FinishReason == "error" {
					return fmt.Errorf("stream failed: %s", c.Text)
				}
				if c.Text == "" {
					continue
				}
				select {
				case s.ch <- c.Text:
					emitted = true
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if !emitted {
				return errEmptyStream
			}
			return nil
		})

		if err == nil {
			g.metrics.RecordProviderRequest(ctx, e.name, "llm", "ok")
			s.setResult(e.name, types.SourceGenerated, nil)
			return
		}
		if emitted {
			// The reader already saw this provider's words; end the answer
			// with what was produced rather than restarting elsewhere.
			g.metrics.RecordProviderError(ctx, e.name, "llm")
			slog.Warn("answer stream ended early", "provider", e.name, "error", err)
			s.setResult(e.name, types.SourceGenerated, err)
			return
		}

		lastErr = err
		if errors.Is(err, resilience.ErrCircuitOpen) {
			slog.Debug("skipping answer provider (circuit open)", "provider", e.name)
		} else {
			g.metrics.RecordProviderRequest(ctx, e.name, "llm", "error")
			g.metrics.RecordProviderError(ctx, e.name, "llm")
			slog.Warn("answer provider failed, trying next", "provider", e.name, "error", err)
		}
	}

	s.setResult("", types.SourceFallback, fmt.Errorf("%w: %v", resilience.ErrAllFailed, lastErr))
	select {
	case s.ch <- FallbackMessage:
	case <-ctx.Done():
	}
}

// buildSystemPrompt assembles the generation instructions from the request
// context. The answer is kept short enough to deliver verbally.
func buildSystemPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a live interview copilot. Answer the interviewer's question in the candidate's first-person voice, in at most %d words, as 2-4 short spoken-style points.\n", defaultWordLimit)

	switch req.Kind {
	case types.QuestionBehavioral:
		b.WriteString("Structure the answer as situation, action, result.\n")
	case types.QuestionTechnical:
		b.WriteString("Lead with the core concept, then one concrete example from the candidate's experience.\n")
	case types.QuestionSituational:
		b.WriteString("Describe how the candidate would assess the situation, then the steps they would take.\n")
	}

	switch {
	case req.Position != "" && req.Company != "":
		fmt.Fprintf(&b, "The candidate is interviewing for %s at %s.\n", req.Position, req.Company)
	case req.Position != "":
		fmt.Fprintf(&b, "The candidate is interviewing for %s.\n", req.Position)
	case req.Company != "":
		fmt.Fprintf(&b, "The candidate is interviewing at %s.\n", req.Company)
	}
	if req.Resume != "" {
		fmt.Fprintf(&b, "Candidate background:\n%s\n", req.Resume)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "Talking points to weave in when relevant:\n%s\n", req.Notes)
	}
	return b.String()
}
