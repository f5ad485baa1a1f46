package whisper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/provider/stt/whisper"
)

func TestNewRequiresServerURL(t *testing.T) {
	if _, err := whisper.New(""); err == nil {
		t.Fatal("expected error for empty server URL")
	}
}

func TestTranscribe(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path = %q, want /inference", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")

		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer f.Close()
		header := make([]byte, 4)
		if _, err := f.Read(header); err != nil || string(header) != "RIFF" {
			t.Errorf("uploaded file is not a WAV container (header %q, err %v)", header, err)
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "what are your strengths"})
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL, whisper.WithLanguage("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := p.Transcribe(context.Background(), stt.Segment{
		PCM:        make([]byte, 3200),
		SampleRate: 16000,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "what are your strengths" {
		t.Errorf("text = %q", tr.Text)
	}
	if gotLanguage != "en" {
		t.Errorf("language field = %q, want en", gotLanguage)
	}
}

func TestTranscribeEmptySegment(t *testing.T) {
	p, err := whisper.New("http://localhost:1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := p.Transcribe(context.Background(), stt.Segment{})
	if err != nil {
		t.Fatalf("Transcribe(empty) returned error: %v", err)
	}
	if tr.Text != "" {
		t.Errorf("expected empty transcript, got %q", tr.Text)
	}
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Transcribe(context.Background(), stt.Segment{
		PCM:        make([]byte, 320),
		SampleRate: 16000,
		Channels:   1,
	}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
