// Package openai embeds question text through the OpenAI embeddings API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/answercue/answercue/pkg/provider/embeddings"
)

// DefaultModel is used when no model is configured. The small model is
// plenty for matching paraphrased interview questions and keeps the stored
// vectors at 1536 dimensions.
const DefaultModel = oai.EmbeddingModelTextEmbedding3Small

var _ embeddings.Provider = (*Provider)(nil)

// Provider implements embeddings.Provider against the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL      string
	organization string
	timeout      time.Duration
}

// Option is a functional option for [New].
type Option func(*config)

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithOrganization sets the OpenAI organization ID on all requests.
func WithOrganization(org string) Option {
	return func(c *config) { c.organization = org }
}

// WithTimeout bounds each embedding request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New creates a Provider. An empty model selects [DefaultModel].
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(cfg.organization))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: p.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	return toFloat32(resp.Data[0].Embedding), nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	return modelDimensions(p.model)
}

// modelDimensions maps known OpenAI embedding models to their vector length.
// Unknown models get the 1536 the current generation defaults to; the pgvector
// schema is sized from this value, so a mismatch surfaces as an insert error
// rather than silent corruption.
func modelDimensions(model string) int {
	switch lower := strings.ToLower(model); {
	case strings.Contains(lower, "text-embedding-3-large"):
		return 3072
	case strings.Contains(lower, "text-embedding-3-small"),
		strings.Contains(lower, "text-embedding-ada-002"):
		return 1536
	default:
		return 1536
	}
}

// The API returns float64; pgvector and the library store float32.
func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
