package anyllm

import (
	"testing"

	"github.com/answercue/answercue/pkg/provider/llm"
	"github.com/answercue/answercue/pkg/types"
)

func completionRequest() llm.CompletionRequest {
	return llm.CompletionRequest{
		SystemPrompt: "You are a concise interview coach.",
		Messages: []types.Message{
			{Role: "user", Content: "What are your strengths?"},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty provider name")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := New("not-a-provider", "some-model"); err == nil {
		t.Error("expected error for unsupported provider name")
	}
}

func TestCountTokensApproximation(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	msgs := []types.Message{
		{Role: "user", Content: "What are your strengths?"}, // 24 chars → 6 tokens + 4 overhead
	}
	got, err := p.CountTokens(msgs)
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got != 10 {
		t.Errorf("CountTokens = %d, want 10", got)
	}
}

func TestModelCapabilities(t *testing.T) {
	tests := []struct {
		model       string
		wantContext int
		wantOutput  int
	}{
		{"gpt-4o-mini", 128_000, 16_384},
		{"gpt-4", 8_192, 4_096},
		{"claude-3-5-sonnet-latest", 200_000, 8_192},
		{"gemini-1.5-pro", 2_097_152, 8_192},
		{"totally-unknown", 128_000, 4_096},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			caps := modelCapabilities(tt.model)
			if caps.ContextWindow != tt.wantContext {
				t.Errorf("ContextWindow = %d, want %d", caps.ContextWindow, tt.wantContext)
			}
			if caps.MaxOutputTokens != tt.wantOutput {
				t.Errorf("MaxOutputTokens = %d, want %d", caps.MaxOutputTokens, tt.wantOutput)
			}
			if !caps.SupportsStreaming {
				t.Error("SupportsStreaming should be true")
			}
		})
	}
}

func TestBuildParams(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(completionRequest())

	if params.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected system prompt + user message, got %d messages", len(params.Messages))
	}
	if params.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", params.Messages[0].Role)
	}
	if params.Temperature == nil || *params.Temperature != 0.7 {
		t.Errorf("temperature not propagated")
	}
	if params.MaxTokens == nil || *params.MaxTokens != 200 {
		t.Errorf("max tokens not propagated")
	}
}
