// Package deepgram provides a Deepgram-backed STT provider using the Deepgram
// streaming WebSocket API. It implements the stt.Provider interface.
//
// Each Transcribe call opens a short-lived streaming connection, writes the
// finalized segment in frames, asks Deepgram to flush with a CloseStream
// message, and concatenates the final results into a single transcript.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/types"
)

const (
	deepgramEndpoint = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
	defaultLanguage  = "en"
	defaultTimeout   = 10 * time.Second

	// frameSize is the number of PCM bytes written per WebSocket message.
	// 8 KiB keeps individual frames well under Deepgram's message limits.
	frameSize = 8192
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the Deepgram model to use (e.g., "nova-3", "base").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code for recognition (e.g., "en", "de-DE").
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithTimeout caps the total duration of a single Transcribe call, including
// the dial, upload, and result collection. Defaults to 10 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// Provider implements stt.Provider backed by the Deepgram streaming API.
type Provider struct {
	apiKey   string
	model    string
	language string
	timeout  time.Duration
}

// New creates a new Deepgram Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		model:    defaultModel,
		language: defaultLanguage,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe implements stt.Provider. It uploads the segment over a dedicated
// streaming connection and blocks until Deepgram has flushed all results.
func (p *Provider) Transcribe(ctx context.Context, seg stt.Segment) (types.Transcript, error) {
	if len(seg.PCM) == 0 {
		return types.Transcript{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	wsURL, err := p.buildURL(seg)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.apiKey)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return types.Transcript{}, fmt.Errorf("deepgram: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "segment transcribed")

	// Upload the segment in frames, then ask Deepgram to flush.
	for off := 0; off < len(seg.PCM); off += frameSize {
		end := min(off+frameSize, len(seg.PCM))
		if err := conn.Write(ctx, websocket.MessageBinary, seg.PCM[off:end]); err != nil {
			return types.Transcript{}, fmt.Errorf("deepgram: write audio: %w", err)
		}
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`)); err != nil {
		return types.Transcript{}, fmt.Errorf("deepgram: close stream: %w", err)
	}

	return p.collectFinals(ctx, conn, seg)
}

// collectFinals reads result messages until Deepgram closes the connection and
// merges all final alternatives into one Transcript.
func (p *Provider) collectFinals(ctx context.Context, conn *websocket.Conn, seg stt.Segment) (types.Transcript, error) {
	var (
		parts      []string
		words      []types.WordDetail
		confSum    float64
		confCount  int
		gotResults bool
	)

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) || gotResults {
				break
			}
			if ctx.Err() != nil {
				return types.Transcript{}, fmt.Errorf("deepgram: read results: %w", ctx.Err())
			}
			return types.Transcript{}, fmt.Errorf("deepgram: read results: %w", err)
		}

		t, ok := parseResponse(msg)
		if !ok {
			continue
		}
		gotResults = true
		if t.Text == "" {
			continue
		}
		parts = append(parts, t.Text)
		words = append(words, t.Words...)
		confSum += t.Confidence
		confCount++
	}

	out := types.Transcript{
		Text:     strings.Join(parts, " "),
		Words:    words,
		Duration: seg.Duration(),
	}
	if confCount > 0 {
		out.Confidence = confSum / float64(confCount)
	}
	return out, nil
}

// buildURL constructs the Deepgram streaming endpoint URL for the segment.
func (p *Provider) buildURL(seg stt.Segment) (string, error) {
	u, err := url.Parse(deepgramEndpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", p.model)
	q.Set("language", p.language)
	q.Set("punctuate", "true")
	q.Set("interim_results", "false")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(seg.SampleRate))
	if seg.Channels > 0 {
		q.Set("channels", strconv.Itoa(seg.Channels))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// deepgramResponse is the JSON structure returned by Deepgram for a Results event.
type deepgramResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
			Words      []struct {
				Word       string  `json:"word"`
				Start      float64 `json:"start"`
				End        float64 `json:"end"`
				Confidence float64 `json:"confidence"`
			} `json:"words"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseResponse parses a raw Deepgram WebSocket message into a Transcript.
// Returns (Transcript, true) for final results, or (zero, false) if the
// message should be ignored.
func parseResponse(data []byte) (types.Transcript, bool) {
	var resp deepgramResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.Transcript{}, false
	}
	if resp.Type != "Results" || !resp.IsFinal {
		return types.Transcript{}, false
	}
	if len(resp.Channel.Alternatives) == 0 {
		return types.Transcript{}, false
	}

	alt := resp.Channel.Alternatives[0]
	words := make([]types.WordDetail, 0, len(alt.Words))
	for _, w := range alt.Words {
		words = append(words, types.WordDetail{
			Word:       w.Word,
			Start:      time.Duration(w.Start * float64(time.Second)),
			End:        time.Duration(w.End * float64(time.Second)),
			Confidence: w.Confidence,
		})
	}

	return types.Transcript{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Words:      words,
	}, true
}
