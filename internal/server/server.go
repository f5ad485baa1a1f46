// Package server exposes the answercue pipeline over HTTP: a websocket
// session endpoint plus health and metrics routes.
//
// Clients connect to /ws/session, send binary frames carrying raw PCM audio
// fragments and text frames carrying JSON control messages, and receive JSON
// messages back (transcriptions, detected questions, answers). Each
// connection gets its own [session.Session]; nothing is shared between
// connections beyond the injected stores and providers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/answercue/answercue/internal/credits"
	"github.com/answercue/answercue/internal/health"
	"github.com/answercue/answercue/internal/observe"
	"github.com/answercue/answercue/internal/session"
)

// Compile-time check that the websocket emitter satisfies the pipeline's
// output interface.
var _ session.Emitter = (*wsEmitter)(nil)

// readLimit is the maximum size of a single incoming frame. Audio fragments
// are expected in small chunks; anything larger is a protocol violation.
const readLimit = 1 << 20

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// AllowedOrigins are websocket origin patterns. Empty allows only
	// same-origin connections.
	AllowedOrigins []string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

// Option configures a [Server].
type Option func(*Server)

// WithHealthCheckers registers readiness checkers for /readyz.
func WithHealthCheckers(checkers ...health.Checker) Option {
	return func(s *Server) { s.health = health.New(checkers...) }
}

// WithMetrics sets the metrics instance used by the HTTP middleware and
// session accounting gauges. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSessionOptions forwards options to every session the server creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) { s.sessionOpts = opts }
}

// UpdateSessionOptions replaces the options applied to sessions opened after
// the call. Running sessions are unaffected. Used for config hot reload.
func (s *Server) UpdateSessionOptions(opts ...session.Option) {
	s.optMu.Lock()
	s.sessionOpts = opts
	s.optMu.Unlock()
}

// Server is the HTTP/websocket front of the pipeline. Construct with [New]
// and drive with [Server.Run].
type Server struct {
	cfg     Config
	deps    session.Deps
	health  *health.Handler
	metrics *observe.Metrics
	log     *slog.Logger

	optMu       sync.RWMutex
	sessionOpts []session.Option

	sessionSeq atomic.Uint64
}

// New creates a Server that builds one session per websocket connection from
// deps.
func New(cfg Config, deps session.Deps, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		health: health.New(),
		log:    slog.With("component", "server"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the full route set wrapped in the observability middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/session", s.handleSession)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
			s.log.Info("listening", "addr", s.cfg.Addr, "tls", true)
			err = srv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			s.log.Info("listening", "addr", s.cfg.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// handleSession upgrades the connection and runs one session until the client
// disconnects or the session is rejected.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)
	defer conn.Close(websocket.StatusInternalError, "session ended")

	id := fmt.Sprintf("s-%d", s.sessionSeq.Add(1))
	log := s.log.With("session", id, "user", userID)

	em := newWSEmitter(conn)
	s.optMu.RLock()
	opts := s.sessionOpts
	s.optMu.RUnlock()
	sess := session.New(id, userID, s.deps, em, opts...)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(context.Background(), -1)

	runDone := make(chan error, 1)
	go func() {
		err := sess.Run(ctx)
		runDone <- err
		if errors.Is(err, credits.ErrNoAllowance) {
			// The explicit error message was already delivered; close with a
			// policy status so clients can distinguish it from a crash.
			conn.Close(websocket.StatusPolicyViolation, "no session allowance")
		}
	}()

	log.Info("session opened")
	s.readLoop(ctx, conn, sess, em)

	// Stop the pipeline and wait for teardown accounting to finish.
	cancel()
	if err := <-runDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Info("session ended", "reason", err)
	} else {
		log.Info("session ended")
	}
	conn.Close(websocket.StatusNormalClosure, "bye")
}

// readLoop pumps frames from the connection into the session until the
// connection errors (normally: the client went away).
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session, em *wsEmitter) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		switch typ {
		case websocket.MessageBinary:
			if err := sess.PushAudio(data); err != nil {
				return
			}
		case websocket.MessageText:
			if err := s.dispatch(ctx, sess, em, data); err != nil {
				return
			}
		}
	}
}

// dispatch decodes one control message and routes it to the session. Only a
// closed session is a terminal error; malformed input is reported to the
// client and the connection stays open.
func (s *Server) dispatch(ctx context.Context, sess *session.Session, em *wsEmitter, data []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return em.Error(ctx, "malformed control message")
	}

	var err error
	switch msg.Type {
	case msgContext:
		err = sess.SetContext(session.Context{
			UserID:   msg.UserID,
			Position: msg.Position,
			Company:  msg.Company,
			Resume:   msg.Resume,
			Notes:    msg.Notes,
			Pairs:    toPairs(msg.Pairs),
		})
	case msgGenerateAnswer:
		err = sess.GenerateAnswer(msg.Question)
	case msgClear:
		err = sess.Clear()
	case msgFinalize:
		err = sess.Finalize()
	case msgConfig:
		err = sess.SetAudioFormat(session.AudioFormat{
			SampleRate: msg.SampleRate,
			Channels:   msg.Channels,
		})
	default:
		return em.Error(ctx, fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if errors.Is(err, session.ErrClosed) {
		return err
	}
	return nil
}
