package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/answercue/answercue/pkg/provider/llm"
	llmmock "github.com/answercue/answercue/pkg/provider/llm/mock"
	"github.com/answercue/answercue/pkg/types"
)

func TestLikelyQuestion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"question mark", "So you worked at a startup?", true},
		{"leading what", "what are your strengths", true},
		{"leading how", "How do you handle conflict", true},
		{"embedded phrase", "okay so tell me about yourself", true},
		{"walk me through", "great, walk me through your resume", true},
		{"imperative with period", "Discuss a situation in which your team strongly disagreed with you.", true},
		{"marker-less prompt", "Summarize your experience leading distributed teams across several time zones", true},
		{"six word statement with period", "Name three tools you use daily.", true},
		{"statement", "thanks for joining the call today", false},
		{"filler", "yeah that makes sense to me", false},
		{"short statement with period", "I grew up here.", false},
		{"too short", "why not", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LikelyQuestion(tt.text); got != tt.want {
				t.Errorf("LikelyQuestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLikelyComplete(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"two words with question mark", "your strengths?", false},
		{"four words with question mark", "what are your strengths?", true},
		{"five words with question mark", "what are your main strengths?", true},
		{"five words no punctuation", "what are your main strengths", false},
		{"eight words no punctuation", "can you tell me about your greatest strength", true},
		{"five words with period", "tell me about your background.", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LikelyComplete(tt.text); got != tt.want {
				t.Errorf("LikelyComplete(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyByPattern(t *testing.T) {
	tests := []struct {
		question string
		want     types.QuestionKind
	}{
		{"Tell me about a time you disagreed with your manager", types.QuestionBehavioral},
		{"Describe a situation where a release went wrong", types.QuestionBehavioral},
		{"What would you do if a deadline slipped?", types.QuestionSituational},
		{"How would you handle an underperforming teammate?", types.QuestionSituational},
		{"How would you design a URL shortener?", types.QuestionTechnical},
		{"What is the difference between a process and a thread?", types.QuestionTechnical},
		{"What are your strengths?", types.QuestionGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			kind, confidence := ClassifyByPattern(tt.question)
			if kind != tt.want {
				t.Errorf("kind = %q, want %q", kind, tt.want)
			}
			if confidence <= 0 || confidence > 1 {
				t.Errorf("confidence = %f out of range", confidence)
			}
		})
	}
}

func TestPlaceholderAnswer(t *testing.T) {
	for _, kind := range []types.QuestionKind{
		types.QuestionBehavioral,
		types.QuestionTechnical,
		types.QuestionSituational,
		types.QuestionGeneral,
	} {
		if PlaceholderAnswer(kind) == "" {
			t.Errorf("no placeholder for kind %q", kind)
		}
	}
	if PlaceholderAnswer("bogus") != PlaceholderAnswer(types.QuestionGeneral) {
		t.Error("unknown kind should fall back to the general placeholder")
	}
}

func TestClassifySkipsModelWhenConfident(t *testing.T) {
	model := &llmmock.Provider{}
	c := NewClassifier(model)

	kind, _ := c.Classify(context.Background(), "Tell me about a time you failed")
	if kind != types.QuestionBehavioral {
		t.Errorf("kind = %q, want behavioral", kind)
	}
	if len(model.CompleteCalls) != 0 {
		t.Errorf("model consulted %d times, want 0", len(model.CompleteCalls))
	}
}

func TestClassifyConsultsModelWhenUncertain(t *testing.T) {
	model := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "technical"},
	}
	c := NewClassifier(model)

	kind, confidence := c.Classify(context.Background(), "What are your strengths?")
	if kind != types.QuestionTechnical {
		t.Errorf("kind = %q, want technical (model verdict)", kind)
	}
	if confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", confidence)
	}
	if len(model.CompleteCalls) != 1 {
		t.Fatalf("model consulted %d times, want 1", len(model.CompleteCalls))
	}
}

func TestClassifyDegradesOnModelFailure(t *testing.T) {
	model := &llmmock.Provider{CompleteErr: errors.New("model down")}
	c := NewClassifier(model)

	kind, _ := c.Classify(context.Background(), "What are your strengths?")
	if kind != types.QuestionGeneral {
		t.Errorf("kind = %q, want pattern fallback general", kind)
	}
}

func TestClassifyRejectsInvalidModelOutput(t *testing.T) {
	model := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "philosophical"},
	}
	c := NewClassifier(model)

	kind, _ := c.Classify(context.Background(), "What are your strengths?")
	if kind != types.QuestionGeneral {
		t.Errorf("kind = %q, want pattern fallback general", kind)
	}
}

func TestClassifyWithoutModel(t *testing.T) {
	c := NewClassifier(nil)
	kind, _ := c.Classify(context.Background(), "What are your strengths?")
	if kind != types.QuestionGeneral {
		t.Errorf("kind = %q, want general", kind)
	}
}
