// Package types defines the shared types used across all answercue packages.
//
// These types form the lingua franca between providers, the answer index,
// the question detector, and the session loop. They are intentionally minimal:
// each package defines its own domain types, but cross-cutting data structures
// live here to avoid circular imports.
package types

import "time"

// Transcript represents a speech-to-text result for one finalized audio segment.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0–1.0). May be zero if the
	// provider does not report confidence.
	Confidence float64

	// Words contains per-word detail when available (Deepgram).
	// May be nil for providers that don't support word-level output.
	Words []WordDetail

	// Duration is the length of the transcribed segment.
	Duration time.Duration
}

// WordDetail holds per-word metadata from STT providers that support it.
type WordDetail struct {
	Word       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
}

// Message represents a single message in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// QuestionKind categorizes a detected interview question. The category picks
// the holding answer shown while a real one is being produced and shapes the
// generation prompt.
type QuestionKind string

const (
	// QuestionBehavioral covers "tell me about a time…" style questions.
	QuestionBehavioral QuestionKind = "behavioral"

	// QuestionTechnical covers implementation, tooling and design questions.
	QuestionTechnical QuestionKind = "technical"

	// QuestionSituational covers hypothetical "what would you do if…" questions.
	QuestionSituational QuestionKind = "situational"

	// QuestionGeneral is the catch-all for everything else.
	QuestionGeneral QuestionKind = "general"
)

// IsValid reports whether k is a known question kind.
func (k QuestionKind) IsValid() bool {
	switch k {
	case QuestionBehavioral, QuestionTechnical, QuestionSituational, QuestionGeneral:
		return true
	}
	return false
}

// AnswerSource identifies where an answer came from. Clients display cached
// answers immediately and render generated ones incrementally.
type AnswerSource string

const (
	// SourceExact means the question matched a prepared answer verbatim
	// (after normalization).
	SourceExact AnswerSource = "exact"

	// SourceFuzzy means the question matched a prepared answer above the
	// similarity acceptance threshold.
	SourceFuzzy AnswerSource = "fuzzy"

	// SourceSemantic means the question matched a stored answer by
	// embedding similarity.
	SourceSemantic AnswerSource = "semantic"

	// SourceGenerated means the answer was produced by a language model.
	SourceGenerated AnswerSource = "generated"

	// SourceFallback means every generation backend failed and a generic
	// holding message was delivered instead.
	SourceFallback AnswerSource = "fallback"
)

// QAPair is a prepared question/answer pair supplied by the user, either
// inline over the wire or loaded from their saved library.
type QAPair struct {
	// ID identifies the pair in persistent storage. Empty for inline pairs.
	ID string

	// Question is the prepared question text as authored.
	Question string

	// Answer is the prepared answer text.
	Answer string

	// Kind is the question category, if the author assigned one.
	Kind QuestionKind

	// UseCount is how often this pair has answered a live question.
	UseCount int

	// LastUsed is when this pair last answered a live question.
	LastUsed time.Time
}

// ModelCapabilities describes what an LLM model supports.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens the model can generate in one completion.
	MaxOutputTokens int

	// SupportsStreaming indicates the model supports streaming completions.
	SupportsStreaming bool
}
