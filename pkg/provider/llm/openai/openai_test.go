package openai

import (
	"testing"

	"github.com/answercue/answercue/pkg/provider/llm"
	"github.com/answercue/answercue/pkg/types"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestBuildParams(t *testing.T) {
	p, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	params, err := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "Be brief.",
		Messages: []types.Message{
			{Role: "user", Content: "What are your strengths?"},
			{Role: "assistant", Content: "Focus and follow-through."},
		},
		Temperature: 0.5,
		MaxTokens:   150,
	})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if len(params.Messages) != 3 {
		t.Errorf("expected 3 messages (system + 2), got %d", len(params.Messages))
	}
	if string(params.Model) != "gpt-4o-mini" {
		t.Errorf("model = %q", params.Model)
	}
}

func TestBuildParamsUnknownRole(t *testing.T) {
	p, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.buildParams(llm.CompletionRequest{
		Messages: []types.Message{{Role: "narrator", Content: "hm"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestModelCapabilities(t *testing.T) {
	caps := modelCapabilities("gpt-4o-mini")
	if caps.MaxOutputTokens != 16_384 {
		t.Errorf("MaxOutputTokens = %d, want 16384", caps.MaxOutputTokens)
	}
	caps = modelCapabilities("o1-preview")
	if caps.ContextWindow != 200_000 {
		t.Errorf("ContextWindow = %d, want 200000", caps.ContextWindow)
	}
}
