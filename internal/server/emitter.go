package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/answercue/answercue/pkg/types"
)

// writeTimeout bounds each outgoing frame so one stalled client cannot pin a
// pipeline goroutine forever.
const writeTimeout = 10 * time.Second

// wsEmitter implements [session.Emitter] over a websocket connection. Writes
// are serialised with a mutex because loop acknowledgements and turn output
// can arrive concurrently.
type wsEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSEmitter(conn *websocket.Conn) *wsEmitter {
	return &wsEmitter{conn: conn}
}

func (e *wsEmitter) send(ctx context.Context, msg serverMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("server: marshal %s: %w", msg.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("server: write %s: %w", msg.Type, err)
	}
	return nil
}

func (e *wsEmitter) Transcription(ctx context.Context, text, accumulated string) error {
	return e.send(ctx, serverMessage{Type: msgTranscription, Text: text, Accumulated: accumulated})
}

func (e *wsEmitter) QuestionDetected(ctx context.Context, question string, kind types.QuestionKind) error {
	return e.send(ctx, serverMessage{Type: msgQuestionDetected, Question: question, Kind: string(kind)})
}

func (e *wsEmitter) AnswerTemporary(ctx context.Context, question, text string) error {
	return e.send(ctx, serverMessage{Type: msgAnswerTemporary, Question: question, Answer: text})
}

func (e *wsEmitter) Answer(ctx context.Context, question, text string, source types.AnswerSource) error {
	return e.send(ctx, serverMessage{Type: msgAnswer, Question: question, Answer: text, Source: string(source)})
}

func (e *wsEmitter) AnswerStreamStart(ctx context.Context, question string) error {
	return e.send(ctx, serverMessage{Type: msgAnswerStreamStart, Question: question})
}

func (e *wsEmitter) AnswerStreamChunk(ctx context.Context, text string) error {
	return e.send(ctx, serverMessage{Type: msgAnswerStreamChunk, Text: text})
}

func (e *wsEmitter) AnswerStreamEnd(ctx context.Context, source types.AnswerSource, provider string) error {
	return e.send(ctx, serverMessage{Type: msgAnswerStreamEnd, Source: string(source), Provider: provider})
}

func (e *wsEmitter) Cleared(ctx context.Context) error {
	return e.send(ctx, serverMessage{Type: msgCleared})
}

func (e *wsEmitter) ContextAck(ctx context.Context, pairs int) error {
	return e.send(ctx, serverMessage{Type: msgContextAck, Pairs: pairs})
}

func (e *wsEmitter) Finalized(ctx context.Context) error {
	return e.send(ctx, serverMessage{Type: msgFinalized})
}

func (e *wsEmitter) Error(ctx context.Context, message string) error {
	return e.send(ctx, serverMessage{Type: msgError, Message: message})
}
