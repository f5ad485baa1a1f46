// Package whisper provides a local whisper.cpp-backed STT provider.
//
// It connects to a running whisper-server binary (which exposes a REST API at
// POST /inference), wraps each finalized PCM segment in a WAV container, and
// submits it as a batch inference request. Because whisper.cpp is a batch
// engine this maps directly onto the segment-oriented stt.Provider contract.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080", whisper.WithLanguage("en"))
//	transcript, err := p.Transcribe(ctx, seg)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/answercue/answercue/pkg/audio"
	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/types"
)

const (
	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base.en", "small"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent to the whisper.cpp server
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the HTTP timeout for a single inference request.
// Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements stt.Provider backed by a local whisper.cpp HTTP server.
// Safe for concurrent use; each Transcribe call is an independent request.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a new Provider that connects to the whisper.cpp HTTP server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
// Functional options may be provided to override defaults.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe implements stt.Provider. It encodes the segment as WAV and POSTs
// it to the whisper.cpp /inference endpoint as multipart/form-data.
func (p *Provider) Transcribe(ctx context.Context, seg stt.Segment) (types.Transcript, error) {
	if len(seg.PCM) == 0 {
		return types.Transcript{}, nil
	}

	wav := audio.EncodeWAV(seg.PCM, seg.SampleRate, seg.Channels)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// Primary audio field.
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: write wav data: %w", err)
	}

	// Optional hint fields.
	if p.language != "" {
		if err := mw.WriteField("language", p.language); err != nil {
			return types.Transcript{}, fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return types.Transcript{}, fmt.Errorf("whisper: write model field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Transcript{}, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	return types.Transcript{
		Text:     result.Text,
		Duration: seg.Duration(),
	}, nil
}
