package detect

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/answercue/answercue/pkg/provider/llm"
	"github.com/answercue/answercue/pkg/types"
)

// kindPattern pairs a question kind with the patterns that indicate it and a
// confidence assigned when one matches.
type kindPattern struct {
	kind       types.QuestionKind
	confidence float64
	patterns   []*regexp.Regexp
}

// Patterns are ordered: the first matching group wins. Behavioral and
// situational phrasing is distinctive; technical phrasing overlaps with
// general speech, so it carries a lower confidence.
var kindPatterns = []kindPattern{
	{
		kind:       types.QuestionBehavioral,
		confidence: 0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)tell (?:me|us) about a time`),
			regexp.MustCompile(`(?i)describe a (?:time|situation|project|challenge)`),
			regexp.MustCompile(`(?i)give (?:me )?an example of (?:a time|when)`),
			regexp.MustCompile(`(?i)have you ever`),
			regexp.MustCompile(`(?i)share an experience`),
		},
	},
	{
		kind:       types.QuestionSituational,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)what would you do`),
			regexp.MustCompile(`(?i)how would you (?:handle|deal with|respond|react|approach)`),
			regexp.MustCompile(`(?i)if you (?:were|had|found|saw|discovered)`),
			regexp.MustCompile(`(?i)imagine (?:you|that)`),
			regexp.MustCompile(`(?i)suppose (?:you|that)`),
		},
	},
	{
		kind:       types.QuestionTechnical,
		confidence: 0.75,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)how (?:do|does|would) .* work`),
			regexp.MustCompile(`(?i)how would you (?:implement|design|build|optimi[sz]e|debug|test|scale)`),
			regexp.MustCompile(`(?i)(?:what is|what are|explain) (?:the )?(?:difference|tradeoffs?|pros and cons)`),
			regexp.MustCompile(`(?i)walk me through (?:your|the|how)`),
			regexp.MustCompile(`(?i)(?:implement|algorithm|complexity|architecture|database|concurrenc|deploy|pipeline|api|cach|latency)`),
		},
	},
}

// ClassifyByPattern assigns a question kind from the pattern tables alone.
// Questions matching no group fall back to general with low confidence.
func ClassifyByPattern(question string) (types.QuestionKind, float64) {
	for _, kp := range kindPatterns {
		for _, re := range kp.patterns {
			if re.MatchString(question) {
				return kp.kind, kp.confidence
			}
		}
	}
	return types.QuestionGeneral, 0.5
}

// placeholderAnswers are the instant holding answers shown while a real
// answer is being looked up or generated, keyed by question kind.
var placeholderAnswers = map[types.QuestionKind]string{
	types.QuestionBehavioral:  "Pick a concrete situation; walk through the task, your actions, and the measurable result.",
	types.QuestionTechnical:   "Start with the core concept, then a practical example from your own work.",
	types.QuestionSituational: "Outline how you would assess the situation first, then the steps you would take and why.",
	types.QuestionGeneral:     "Keep it concise: lead with your strongest relevant point, then back it with one example.",
}

// PlaceholderAnswer returns the canned holding answer for the question kind.
// Unknown kinds get the general placeholder.
func PlaceholderAnswer(kind types.QuestionKind) string {
	if a, ok := placeholderAnswers[kind]; ok {
		return a
	}
	return placeholderAnswers[types.QuestionGeneral]
}

const (
	// verifyConfidence is the pattern confidence below which the classifier
	// consults the model.
	verifyConfidence = 0.7

	// verifyTimeout bounds the model call; classification is on the answer
	// path and must not stall it.
	verifyTimeout = 2 * time.Second
)

const classifySystemPrompt = `You classify interview questions. Reply with exactly one word from: behavioral, technical, situational, general.`

// Classifier assigns question kinds, escalating from patterns to a language
// model only when the pattern confidence is low. A nil model disables
// escalation entirely.
type Classifier struct {
	model   llm.Provider
	timeout time.Duration
}

// NewClassifier returns a Classifier backed by the given model. model may be
// nil, in which case classification is pattern-only.
func NewClassifier(model llm.Provider) *Classifier {
	return &Classifier{model: model, timeout: verifyTimeout}
}

// Classify returns the kind of the question and the confidence of the
// decision. When the pattern tables are confident the model is never
// consulted; when they are not, the model's verdict wins unless the call
// fails, in which case the pattern result stands.
func (c *Classifier) Classify(ctx context.Context, question string) (types.QuestionKind, float64) {
	kind, confidence := ClassifyByPattern(question)
	if confidence >= verifyConfidence || c.model == nil {
		return kind, confidence
	}

	verified, err := c.verifyWithModel(ctx, question)
	if err != nil {
		slog.Debug("model classification failed, keeping pattern result",
			"kind", kind, "error", err)
		return kind, confidence
	}
	return verified, 0.9
}

// verifyWithModel asks the model for a one-word classification.
func (c *Classifier) verifyWithModel(ctx context.Context, question string) (types.QuestionKind, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: classifySystemPrompt,
		Messages: []types.Message{
			{Role: "user", Content: question},
		},
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		return "", fmt.Errorf("detect: classify: %w", err)
	}

	kind := types.QuestionKind(strings.ToLower(strings.TrimSpace(strings.Trim(resp.Content, ".!\"'"))))
	if !kind.IsValid() {
		return "", fmt.Errorf("detect: classify: model returned %q", resp.Content)
	}
	return kind, nil
}
