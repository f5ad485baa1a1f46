package server

import (
	"github.com/answercue/answercue/pkg/types"
)

// Client → server control message types.
const (
	msgContext        = "context"
	msgGenerateAnswer = "generate_answer"
	msgClear          = "clear"
	msgFinalize       = "finalize"
	msgConfig         = "config"
)

// Server → client message types.
const (
	msgTranscription     = "transcription"
	msgQuestionDetected  = "question_detected"
	msgAnswerTemporary   = "answer_temporary"
	msgAnswer            = "answer"
	msgAnswerStreamStart = "answer_stream_start"
	msgAnswerStreamChunk = "answer_stream_chunk"
	msgAnswerStreamEnd   = "answer_stream_end"
	msgCleared           = "cleared"
	msgContextAck        = "context_ack"
	msgFinalized         = "finalized"
	msgError             = "error"
)

// wirePair is a question/answer pair on the wire.
type wirePair struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Kind     string `json:"kind,omitempty"`
}

// clientMessage is the envelope for every text frame a client sends. Type
// selects which fields are meaningful.
type clientMessage struct {
	Type string `json:"type"`

	// context fields.
	UserID   string     `json:"user_id,omitempty"`
	Position string     `json:"position,omitempty"`
	Company  string     `json:"company,omitempty"`
	Resume   string     `json:"resume,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	Pairs    []wirePair `json:"pairs,omitempty"`

	// generate_answer field.
	Question string `json:"question,omitempty"`

	// config fields.
	SampleRate int `json:"sample_rate,omitempty"`
	Channels   int `json:"channels,omitempty"`
}

// serverMessage is the envelope for every text frame the server sends. Type
// selects which fields are populated.
type serverMessage struct {
	Type string `json:"type"`

	// transcription fields.
	Text        string `json:"text,omitempty"`
	Accumulated string `json:"accumulated,omitempty"`

	// question fields.
	Question string `json:"question,omitempty"`
	Kind     string `json:"kind,omitempty"`

	// answer fields.
	Answer   string `json:"answer,omitempty"`
	Source   string `json:"source,omitempty"`
	Provider string `json:"provider,omitempty"`

	// context_ack field.
	Pairs int `json:"pairs,omitempty"`

	// error field.
	Message string `json:"message,omitempty"`
}

// toPairs converts wire pairs to domain pairs, dropping blank kinds to the
// general default.
func toPairs(in []wirePair) []types.QAPair {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.QAPair, 0, len(in))
	for _, p := range in {
		kind := types.QuestionKind(p.Kind)
		if !kind.IsValid() {
			kind = types.QuestionGeneral
		}
		out = append(out, types.QAPair{
			ID:       p.ID,
			Question: p.Question,
			Answer:   p.Answer,
			Kind:     kind,
		})
	}
	return out
}
