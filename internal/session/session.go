// Package session implements the per-connection answer pipeline.
//
// A Session owns everything one websocket connection needs: the audio buffer,
// the running transcript, the per-session answer index, and the
// recent-question window. All mutable state is owned by a single event-loop
// goroutine ([Session.Run]); the connection's read loop feeds events through
// a channel, so audio arriving while a finalize cycle is in flight queues for
// the next buffer without blocking the reader.
//
// The state machine is Idle → Buffering → Finalizing → Buffering…, with
// Closed terminal. A finalize cycle (transcribe → detect → classify →
// resolve) runs in its own goroutine; at most one is in flight at a time,
// and finalize triggers that arrive meanwhile are queued behind it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/answercue/answercue/internal/answer"
	"github.com/answercue/answercue/internal/answerindex"
	"github.com/answercue/answercue/internal/credits"
	"github.com/answercue/answercue/internal/detect"
	"github.com/answercue/answercue/internal/match"
	"github.com/answercue/answercue/internal/observe"
	"github.com/answercue/answercue/internal/qalibrary"
	"github.com/answercue/answercue/pkg/audio"
	"github.com/answercue/answercue/pkg/provider/embeddings"
	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/types"
)

// ErrClosed is returned by Session methods after the event loop has exited.
var ErrClosed = errors.New("session: closed")

// State is the lifecycle state of a [Session].
type State int

const (
	// StateIdle means the connection is up but no audio is buffered.
	StateIdle State = iota

	// StateBuffering means audio fragments are accumulating.
	StateBuffering

	// StateFinalizing means one finalize cycle is in flight. Audio arriving
	// now lands in the next buffer.
	StateFinalizing

	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Emitter delivers pipeline output to the connected client. The server
// package implements it over the websocket wire protocol; tests implement it
// with an in-memory recorder. A non-nil error tells the pipeline the
// connection is no longer worth writing to.
//
// Loop-level acknowledgements and turn pipeline output can be sent
// concurrently, so implementations must be safe for concurrent use.
type Emitter interface {
	Transcription(ctx context.Context, text, accumulated string) error
	QuestionDetected(ctx context.Context, question string, kind types.QuestionKind) error
	AnswerTemporary(ctx context.Context, question, text string) error
	Answer(ctx context.Context, question, text string, source types.AnswerSource) error
	AnswerStreamStart(ctx context.Context, question string) error
	AnswerStreamChunk(ctx context.Context, text string) error
	AnswerStreamEnd(ctx context.Context, source types.AnswerSource, provider string) error
	Cleared(ctx context.Context) error
	ContextAck(ctx context.Context, pairs int) error
	Finalized(ctx context.Context) error
	Error(ctx context.Context, message string) error
}

// Context is the interview context supplied by the client's context message.
type Context struct {
	// UserID selects the persistent Q&A library and usage accounting scope.
	// Empty falls back to the ID the session was opened with.
	UserID string

	// Position and Company describe the role being interviewed for.
	Position string
	Company  string

	// Resume is the candidate's background text.
	Resume string

	// Notes are free-form talking points.
	Notes string

	// Pairs are prepared question/answer pairs for the answer index. When
	// empty and a library is configured, the user's saved pairs are loaded
	// instead.
	Pairs []types.QAPair
}

// AudioFormat describes the PCM stream the client is sending.
type AudioFormat struct {
	SampleRate int
	Channels   int
}

// Deps are the external services a Session draws on. STT, Classifier and
// Generator are required; the rest are optional and disable their feature
// when nil.
type Deps struct {
	STT        stt.Provider
	Classifier *detect.Classifier
	Generator  *answer.Generator

	// Credits gates admission and accounts usage. Nil disables accounting.
	Credits credits.Store

	// Library and Embedder together enable the semantic lookup step and
	// loading saved pairs on a context message. Either nil disables both.
	Library  qalibrary.Library
	Embedder embeddings.Provider
}

const (
	// ~10s of 16kHz mono 16-bit PCM.
	defaultMaxBufferBytes = 320 * 1024

	defaultIdleTimeout       = 1500 * time.Millisecond
	defaultSTTTimeout        = 10 * time.Second
	defaultRecentSize        = 20
	defaultRecentAge         = 2 * time.Minute
	defaultSemanticThreshold = 0.8
	defaultSampleRate        = 16000
	defaultChannels          = 1

	// Budget for best-effort accounting calls (admission check, consume on
	// close, async usage recording).
	creditTimeout = 5 * time.Second

	eventQueueSize = 256
)

// Option configures a [Session] during construction.
type Option func(*Session)

// WithMaxBufferBytes sets the buffer size that forces a finalize.
func WithMaxBufferBytes(n int) Option {
	return func(s *Session) { s.maxBufferBytes = n }
}

// WithIdleTimeout sets the silence duration after which buffered audio is
// finalized. The default is 1.5 seconds.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Session) { s.idleTimeout = d }
}

// WithSTTTimeout bounds each transcription call. The default is 10 seconds.
func WithSTTTimeout(d time.Duration) Option {
	return func(s *Session) { s.sttTimeout = d }
}

// WithRecentWindow sets the size and age bounds of the duplicate-suppression
// window. The defaults are 20 questions and 2 minutes.
func WithRecentWindow(size int, age time.Duration) Option {
	return func(s *Session) { s.recent = NewRecentQuestions(s.matcher, size, age) }
}

// WithSemanticThreshold sets the minimum cosine similarity for a library hit
// to short-circuit generation. The default is 0.8.
func WithSemanticThreshold(t float64) Option {
	return func(s *Session) { s.semanticThreshold = t }
}

// WithAudioFormat sets the initial PCM format. The default is 16kHz mono.
func WithAudioFormat(f AudioFormat) Option {
	return func(s *Session) { s.format = f }
}

// WithMetrics replaces the metrics instance the pipeline records to. The
// default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithMatcher replaces the fuzzy matcher used by the answer index and the
// recent-question window.
func WithMatcher(m *match.Matcher) Option {
	return func(s *Session) {
		s.matcher = m
		s.index = answerindex.New(m, answerindex.WithUsageRecorder(recorderFor(s.deps.Credits)))
		s.recent = NewRecentQuestions(m, defaultRecentSize, defaultRecentAge)
	}
}

// eventKind discriminates the event union fed into the loop.
type eventKind int

const (
	evAudio eventKind = iota
	evContext
	evGenerate
	evClear
	evFinalize
	evConfig
	evTurnDone
)

type event struct {
	kind     eventKind
	audio    []byte
	sctx     Context
	question string
	format   AudioFormat
	turn     turnResult
	epoch    uint64
}

// turnResult is what a finished finalize cycle reports back to the loop.
type turnResult struct {
	// appendText is transcribed text to add to the running transcript.
	appendText string

	// partial carries an incomplete question into the next cycle.
	partial string
}

// Session is the per-connection pipeline. Construct with [New], drive with
// [Session.Run], feed from the connection's read loop via the Push/Set
// methods. All exported methods are safe for concurrent use.
type Session struct {
	id      string
	userID  string
	deps    Deps
	em      Emitter
	log     *slog.Logger
	metrics *observe.Metrics

	matcher *match.Matcher
	index   *answerindex.Index
	recent  *RecentQuestions

	maxBufferBytes    int
	idleTimeout       time.Duration
	sttTimeout        time.Duration
	semanticThreshold float64
	format            AudioFormat

	events chan event
	done   chan struct{}

	// Everything below is owned by the Run goroutine.
	state           State
	buf             []byte
	accumulated     string
	partial         string
	sctx            Context
	inFlight        bool
	cancelTurn      context.CancelFunc
	pendingFinalize bool
	pendingAsk      []string
	epoch           uint64
}

// New creates a Session for one connection. id is a per-connection identifier
// used only for logging; userID scopes accounting and the persistent library.
func New(id, userID string, deps Deps, em Emitter, opts ...Option) *Session {
	s := &Session{
		id:                id,
		userID:            userID,
		deps:              deps,
		em:                em,
		log:               slog.With("session", id, "user", userID),
		metrics:           observe.DefaultMetrics(),
		matcher:           match.New(),
		maxBufferBytes:    defaultMaxBufferBytes,
		idleTimeout:       defaultIdleTimeout,
		sttTimeout:        defaultSTTTimeout,
		semanticThreshold: defaultSemanticThreshold,
		format:            AudioFormat{SampleRate: defaultSampleRate, Channels: defaultChannels},
		events:            make(chan event, eventQueueSize),
		done:              make(chan struct{}),
	}
	s.index = answerindex.New(s.matcher, answerindex.WithUsageRecorder(recorderFor(deps.Credits)))
	s.recent = NewRecentQuestions(s.matcher, defaultRecentSize, defaultRecentAge)
	for _, o := range opts {
		o(s)
	}
	return s
}

// recorderFor adapts an optional credits store into the index's usage
// recorder. A nil store records nowhere.
func recorderFor(store credits.Store) answerindex.UsageRecorder {
	if store == nil {
		return nil
	}
	return store
}

// PushAudio queues an audio fragment. The data is copied.
func (s *Session) PushAudio(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	return s.push(event{kind: evAudio, audio: buf})
}

// SetContext queues a context update: interview details plus the pairs to
// (re)build the answer index from.
func (s *Session) SetContext(c Context) error {
	return s.push(event{kind: evContext, sctx: c})
}

// GenerateAnswer queues an explicit answer request for a question string,
// bypassing the audio pipeline.
func (s *Session) GenerateAnswer(question string) error {
	return s.push(event{kind: evGenerate, question: question})
}

// Clear queues a reset of the transcript, buffer, recent-question window and
// any in-flight generation. The context and answer index survive.
func (s *Session) Clear() error {
	return s.push(event{kind: evClear})
}

// Finalize queues an explicit end-of-speech signal.
func (s *Session) Finalize() error {
	return s.push(event{kind: evFinalize})
}

// SetAudioFormat queues a PCM format change. It applies to fragments pushed
// after it.
func (s *Session) SetAudioFormat(f AudioFormat) error {
	return s.push(event{kind: evConfig, format: f})
}

func (s *Session) push(ev event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Run executes the event loop until ctx is cancelled. It checks the user's
// allowance on entry and consumes one session unit on exit; the consume is
// best-effort and never blocks teardown beyond its own timeout.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	if s.deps.Credits != nil {
		admitted, err := s.checkAllowance(ctx)
		if err != nil {
			return err
		}
		if admitted {
			defer s.consume()
		}
	}

	idle := time.NewTimer(s.idleTimeout)
	stopTimer(idle)
	defer stopTimer(idle)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()

		case <-idle.C:
			if len(s.buf) > 0 {
				s.startFinalize(ctx)
			}

		case ev := <-s.events:
			s.handle(ctx, ev, idle)
		}
	}
}

// checkAllowance admits or rejects the session. An unreachable store fails
// open: the session is admitted but not billed.
func (s *Session) checkAllowance(ctx context.Context) (admitted bool, err error) {
	cctx, cancel := context.WithTimeout(ctx, creditTimeout)
	defer cancel()

	remaining, err := s.deps.Credits.Remaining(cctx, s.userID)
	if err != nil {
		s.log.Warn("allowance check failed, admitting session unbilled", "error", err)
		return false, nil
	}
	if remaining <= 0 {
		_ = s.em.Error(ctx, "no session allowance remaining")
		return false, credits.ErrNoAllowance
	}
	return true, nil
}

// consume deducts one session unit. Failures are logged only; accounting
// must never block connection close.
func (s *Session) consume() {
	cctx, cancel := context.WithTimeout(context.Background(), creditTimeout)
	defer cancel()

	if err := s.deps.Credits.Consume(cctx, s.userID); err != nil {
		s.log.Warn("session consume failed", "error", err)
	}
}

// shutdown cancels any in-flight turn and marks the session closed.
func (s *Session) shutdown() {
	if s.cancelTurn != nil {
		s.cancelTurn()
		s.cancelTurn = nil
	}
	s.state = StateClosed
	s.buf = nil
	s.log.Debug("session closed")
}

func (s *Session) handle(ctx context.Context, ev event, idle *time.Timer) {
	switch ev.kind {
	case evAudio:
		s.buf = append(s.buf, ev.audio...)
		if s.state == StateIdle {
			s.state = StateBuffering
		}
		resetTimer(idle, s.idleTimeout)
		if len(s.buf) >= s.maxBufferBytes {
			stopTimer(idle)
			s.startFinalize(ctx)
		}

	case evContext:
		s.applyContext(ctx, ev.sctx)

	case evGenerate:
		q := strings.TrimSpace(ev.question)
		if q == "" {
			s.emitErr(s.em.Error(ctx, "generate_answer requires a question"))
			return
		}
		s.startAsk(ctx, q)

	case evClear:
		s.clear(ctx)

	case evFinalize:
		stopTimer(idle)
		if s.inFlight {
			s.pendingFinalize = true
		} else if len(s.buf) > 0 {
			s.startFinalize(ctx)
		}
		s.emitErr(s.em.Finalized(ctx))

	case evConfig:
		if ev.format.SampleRate > 0 && ev.format.Channels > 0 {
			s.format = ev.format
			s.log.Debug("audio format updated",
				"sample_rate", ev.format.SampleRate, "channels", ev.format.Channels)
		} else {
			s.emitErr(s.em.Error(ctx, "unsupported audio format"))
		}

	case evTurnDone:
		if ev.epoch != s.epoch {
			// A clear happened while this turn ran; its results are void.
			return
		}
		s.finishTurn(ctx, ev.turn)
	}
}

// applyContext rebuilds the answer index from the supplied pairs, or from
// the user's persistent library when none are inline.
func (s *Session) applyContext(ctx context.Context, c Context) {
	if c.UserID == "" {
		c.UserID = s.userID
	}
	s.sctx = c

	pairs := c.Pairs
	if len(pairs) == 0 && s.deps.Library != nil && c.UserID != "" {
		lctx, cancel := context.WithTimeout(ctx, creditTimeout)
		saved, err := s.deps.Library.ListByUser(lctx, c.UserID)
		cancel()
		if err != nil {
			s.log.Warn("loading saved pairs failed", "error", err)
		} else {
			pairs = saved
		}
	}

	s.index.Build(pairs)
	if s.state == StateIdle && len(s.buf) > 0 {
		s.state = StateBuffering
	}
	s.log.Info("context applied", "pairs", len(pairs))
	s.emitErr(s.em.ContextAck(ctx, len(pairs)))
}

// clear resets transcript, buffer, partials and the recent-question window,
// and abandons any in-flight turn. The interview context and answer index
// are kept.
func (s *Session) clear(ctx context.Context) {
	if s.cancelTurn != nil {
		s.cancelTurn()
		s.cancelTurn = nil
	}
	s.inFlight = false
	s.pendingFinalize = false
	s.pendingAsk = nil
	s.buf = nil
	s.accumulated = ""
	s.partial = ""
	s.recent.Reset()
	s.epoch++
	s.state = StateIdle
	s.log.Debug("session cleared")
	s.emitErr(s.em.Cleared(ctx))
}

// startFinalize snapshots the buffer into a segment and hands it to a turn
// goroutine. The buffer is cleared immediately so audio arriving mid-turn
// starts fresh.
func (s *Session) startFinalize(ctx context.Context) {
	if s.inFlight || len(s.buf) == 0 {
		if s.inFlight {
			s.pendingFinalize = true
		}
		return
	}

	// Transcription backends get canonical 16kHz mono regardless of what the
	// client streams.
	pcm := s.buf
	if s.format.Channels == 2 {
		pcm = audio.StereoToMono(pcm)
	}
	if s.format.SampleRate != defaultSampleRate {
		pcm = audio.ResampleMono16(pcm, s.format.SampleRate, defaultSampleRate)
	}
	s.log.Debug("finalizing segment", "bytes", len(pcm), "rms", audio.RMS(pcm))

	seg := stt.Segment{
		PCM:        pcm,
		SampleRate: defaultSampleRate,
		Channels:   1,
	}
	s.buf = nil
	s.inFlight = true
	s.state = StateFinalizing

	tctx, cancel := context.WithCancel(ctx)
	s.cancelTurn = cancel

	go s.runTurn(tctx, seg, s.partial, s.accumulated, s.sctx, s.epoch)
}

// startAsk resolves an explicit question, sharing the single-turn-in-flight
// guard with audio finalizes.
func (s *Session) startAsk(ctx context.Context, question string) {
	if s.inFlight {
		s.pendingAsk = append(s.pendingAsk, question)
		return
	}
	s.inFlight = true

	tctx, cancel := context.WithCancel(ctx)
	s.cancelTurn = cancel
	epoch := s.epoch
	sctx := s.sctx

	go func() {
		s.resolveQuestion(tctx, question, sctx)
		s.turnDone(tctx, turnResult{}, epoch)
	}()
}

// finishTurn folds a completed turn back into loop state and launches
// whatever queued up behind it.
func (s *Session) finishTurn(ctx context.Context, res turnResult) {
	s.inFlight = false
	s.cancelTurn = nil
	if res.appendText != "" {
		s.accumulated = joinText(s.accumulated, res.appendText)
	}
	s.partial = res.partial
	if s.state == StateFinalizing {
		s.state = StateBuffering
	}

	if len(s.pendingAsk) > 0 {
		q := s.pendingAsk[0]
		s.pendingAsk = s.pendingAsk[1:]
		s.startAsk(ctx, q)
		return
	}
	if s.pendingFinalize {
		s.pendingFinalize = false
		s.startFinalize(ctx)
	}
}

func (s *Session) runTurn(ctx context.Context, seg stt.Segment, partial, accumulated string, sctx Context, epoch uint64) {
	res := s.processTurn(ctx, seg, partial, accumulated, sctx)
	s.turnDone(ctx, res, epoch)
}

func (s *Session) turnDone(ctx context.Context, res turnResult, epoch uint64) {
	select {
	case s.events <- event{kind: evTurnDone, turn: res, epoch: epoch}:
	case <-ctx.Done():
	}
}

// processTurn is one finalize cycle: transcribe the segment, extend the
// transcript, and resolve a question if one has completed. A transcription
// failure drops the segment and keeps any carried partial question.
func (s *Session) processTurn(ctx context.Context, seg stt.Segment, partial, accumulated string, sctx Context) turnResult {
	turnStart := time.Now()
	defer func() {
		s.metrics.TurnDuration.Record(ctx, time.Since(turnStart).Seconds())
	}()

	tctx, cancel := context.WithTimeout(ctx, s.sttTimeout)
	sttStart := time.Now()
	transcript, err := s.deps.STT.Transcribe(tctx, seg)
	s.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
	cancel()
	if err != nil {
		s.log.Warn("transcription failed, dropping segment",
			"bytes", len(seg.PCM), "error", err)
		return turnResult{partial: partial}
	}

	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return turnResult{partial: partial}
	}

	s.emitErr(s.em.Transcription(ctx, text, joinText(accumulated, text)))

	combined := joinText(partial, text)
	if !detect.LikelyQuestion(combined) {
		return turnResult{appendText: text}
	}
	if !detect.LikelyComplete(combined) {
		// Question still unfolding; keep it as the prefix for the next
		// segment.
		return turnResult{appendText: text, partial: combined}
	}

	s.resolveQuestion(ctx, combined, sctx)
	return turnResult{appendText: text}
}

// resolveQuestion runs the answer lookup ladder: suppress duplicates,
// classify, then exact/fuzzy index, semantic library, and finally the
// generator stream. Suppression comes first so a repeated question never
// pays for classification, which can reach the model.
func (s *Session) resolveQuestion(ctx context.Context, question string, sctx Context) {
	if s.recent.Seen(question) {
		s.log.Debug("duplicate question suppressed", "question", question)
		return
	}
	s.recent.Add(question)

	kind, confidence := s.deps.Classifier.Classify(ctx, question)
	s.metrics.RecordQuestion(ctx, string(kind))

	s.log.Info("question detected",
		"question", question, "kind", kind, "confidence", confidence)
	s.emitErr(s.em.QuestionDetected(ctx, question, kind))
	s.emitErr(s.em.AnswerTemporary(ctx, question, detect.PlaceholderAnswer(kind)))

	if m, ok := s.index.Find(question); ok {
		source := types.SourceExact
		if m.Kind == answerindex.KindFuzzy {
			source = types.SourceFuzzy
		}
		s.emitErr(s.em.Answer(ctx, question, m.Pair.Answer, source))
		s.metrics.RecordAnswer(ctx, string(source))
		s.index.RecordUse(m)
		return
	}

	if pair, ok := s.searchLibrary(ctx, question, sctx.UserID); ok {
		s.emitErr(s.em.Answer(ctx, question, pair.Answer, types.SourceSemantic))
		s.metrics.RecordAnswer(ctx, string(types.SourceSemantic))
		s.recordLibraryUse(pair.ID)
		return
	}

	s.streamAnswer(ctx, question, kind, sctx)
}

// searchLibrary is the semantic step between a fuzzy miss and generation.
// Any failure here degrades to generation rather than surfacing.
func (s *Session) searchLibrary(ctx context.Context, question, userID string) (types.QAPair, bool) {
	if s.deps.Library == nil || s.deps.Embedder == nil {
		return types.QAPair{}, false
	}
	if userID == "" {
		userID = s.userID
	}
	if userID == "" {
		return types.QAPair{}, false
	}

	ectx, cancel := context.WithTimeout(ctx, creditTimeout)
	defer cancel()

	vec, err := s.deps.Embedder.Embed(ectx, question)
	if err != nil {
		s.log.Warn("embedding failed, skipping semantic lookup", "error", err)
		return types.QAPair{}, false
	}
	results, err := s.deps.Library.SearchSimilar(ectx, userID, vec, 1, s.semanticThreshold)
	if err != nil {
		s.log.Warn("semantic lookup failed", "error", err)
		return types.QAPair{}, false
	}
	if len(results) == 0 {
		return types.QAPair{}, false
	}
	s.log.Debug("semantic hit",
		"pair", results[0].Pair.ID, "similarity", results[0].Similarity)
	return results[0].Pair, true
}

func (s *Session) recordLibraryUse(pairID string) {
	if s.deps.Credits == nil || pairID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), creditTimeout)
		defer cancel()
		if err := s.deps.Credits.RecordAnswerUse(ctx, pairID); err != nil {
			s.log.Debug("recording answer use failed", "pair", pairID, "error", err)
		}
	}()
}

// streamAnswer forwards a generator stream chunk by chunk.
func (s *Session) streamAnswer(ctx context.Context, question string, kind types.QuestionKind, sctx Context) {
	stream := s.deps.Generator.GenerateStream(ctx, answer.Request{
		Question: question,
		Kind:     kind,
		Position: sctx.Position,
		Company:  sctx.Company,
		Resume:   sctx.Resume,
		Notes:    sctx.Notes,
	})

	s.emitErr(s.em.AnswerStreamStart(ctx, question))
	for chunk := range stream.Chunks() {
		s.emitErr(s.em.AnswerStreamChunk(ctx, chunk))
	}
	s.emitErr(s.em.AnswerStreamEnd(ctx, stream.Source(), stream.Provider()))
	s.metrics.RecordAnswer(ctx, string(stream.Source()))

	if err := stream.Err(); err != nil {
		s.log.Warn("answer generation degraded",
			"question", question, "provider", stream.Provider(), "error", err)
	}
}

// emitErr logs a failed send. The websocket layer tears the connection down
// on write failure, so the loop just keeps going until Run's ctx fires.
func (s *Session) emitErr(err error) {
	if err != nil {
		s.log.Debug("emit failed", "error", err)
	}
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
