package deepgram

import (
	"net/url"
	"testing"
	"time"

	"github.com/answercue/answercue/pkg/provider/stt"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestBuildURL(t *testing.T) {
	p, err := New("key", WithModel("nova-3"), WithLanguage("de"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	raw, err := p.buildURL(stt.Segment{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse built URL: %v", err)
	}

	q := u.Query()
	checks := map[string]string{
		"model":           "nova-3",
		"language":        "de",
		"punctuate":       "true",
		"interim_results": "false",
		"encoding":        "linear16",
		"sample_rate":     "16000",
		"channels":        "1",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	msg := []byte(`{
		"type": "Results",
		"is_final": true,
		"channel": {
			"alternatives": [{
				"transcript": "what are your strengths",
				"confidence": 0.98,
				"words": [
					{"word": "what", "start": 0.0, "end": 0.2, "confidence": 0.99}
				]
			}]
		}
	}`)

	tr, ok := parseResponse(msg)
	if !ok {
		t.Fatal("expected message to parse")
	}
	if tr.Text != "what are your strengths" {
		t.Errorf("text = %q", tr.Text)
	}
	if tr.Confidence != 0.98 {
		t.Errorf("confidence = %f, want 0.98", tr.Confidence)
	}
	if len(tr.Words) != 1 || tr.Words[0].End != 200*time.Millisecond {
		t.Errorf("unexpected word detail: %+v", tr.Words)
	}
}

func TestParseResponseIgnoresInterimAndMetadata(t *testing.T) {
	if _, ok := parseResponse([]byte(`{"type":"Results","is_final":false}`)); ok {
		t.Error("interim results must be ignored")
	}
	if _, ok := parseResponse([]byte(`{"type":"Metadata"}`)); ok {
		t.Error("metadata messages must be ignored")
	}
	if _, ok := parseResponse([]byte(`not json`)); ok {
		t.Error("malformed messages must be ignored")
	}
}
