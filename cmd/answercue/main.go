// Command answercue is the main entry point for the answercue interview
// copilot server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/answercue/answercue/internal/answer"
	"github.com/answercue/answercue/internal/config"
	"github.com/answercue/answercue/internal/credits"
	"github.com/answercue/answercue/internal/detect"
	"github.com/answercue/answercue/internal/health"
	"github.com/answercue/answercue/internal/observe"
	"github.com/answercue/answercue/internal/qalibrary"
	"github.com/answercue/answercue/internal/resilience"
	"github.com/answercue/answercue/internal/server"
	"github.com/answercue/answercue/internal/session"
	"github.com/answercue/answercue/pkg/provider/embeddings"
	oaembed "github.com/answercue/answercue/pkg/provider/embeddings/openai"
	"github.com/answercue/answercue/pkg/provider/llm"
	"github.com/answercue/answercue/pkg/provider/llm/anyllm"
	oallm "github.com/answercue/answercue/pkg/provider/llm/openai"
	"github.com/answercue/answercue/pkg/provider/stt"
	"github.com/answercue/answercue/pkg/provider/stt/deepgram"
	"github.com/answercue/answercue/pkg/provider/stt/whisper"
)

// defaultEmbeddingDimensions matches OpenAI text-embedding-3-small.
const defaultEmbeddingDimensions = 1536

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "answercue: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "answercue: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("answercue starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Pipeline dependencies ─────────────────────────────────────────────────
	deps, checkers, pool, err := buildDeps(ctx, cfg, reg)
	if err != nil {
		slog.Error("failed to build pipeline dependencies", "err", err)
		return 1
	}
	if pool != nil {
		defer pool.Close()
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	// ── Server ────────────────────────────────────────────────────────────────
	srvCfg := server.Config{
		Addr:           cfg.Server.ListenAddr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.Server.TLS != nil {
		srvCfg.TLSCertFile = cfg.Server.TLS.CertFile
		srvCfg.TLSKeyFile = cfg.Server.TLS.KeyFile
	}
	srv := server.New(srvCfg, deps,
		server.WithHealthCheckers(checkers...),
		server.WithSessionOptions(sessionOptions(cfg.Session)...),
	)

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.Empty() {
			slog.Info("config changed but no hot-reloadable fields differ; restart to apply")
			return
		}
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.SessionChanged {
			srv.UpdateSessionOptions(sessionOptions(d.NewSession)...)
			slog.Info("session tunables updated; applies to new sessions")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai uses the native SDK client; the remaining backends share the
	// any-llm pattern: optional APIKey + optional BaseURL.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})

	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})
}

// buildDeps instantiates every provider and store named in cfg and assembles
// the per-session dependency set plus readiness checkers.
func buildDeps(ctx context.Context, cfg *config.Config, reg *config.Registry) (session.Deps, []health.Checker, *pgxpool.Pool, error) {
	var deps session.Deps
	var checkers []health.Checker

	// ── Transcription chain ───────────────────────────────────────────────────
	primary, err := reg.CreateSTT(cfg.Providers.STT.Primary)
	if err != nil {
		return deps, nil, nil, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Primary.Name, err)
	}
	sttChain := resilience.NewSTTFallback(primary, cfg.Providers.STT.Primary.Name, resilience.FallbackConfig{})
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Primary.Name)
	if cfg.Providers.STT.Primary.Name == "whisper" && cfg.Providers.STT.Primary.BaseURL != "" {
		checkers = append(checkers, health.Endpoint("whisper", cfg.Providers.STT.Primary.BaseURL))
	}

	for _, entry := range cfg.Providers.STT.Fallbacks {
		p, err := reg.CreateSTT(entry)
		if err != nil {
			return deps, nil, nil, fmt.Errorf("create stt fallback %q: %w", entry.Name, err)
		}
		sttChain.AddFallback(entry.Name, p)
		slog.Info("provider created", "kind", "stt", "name", entry.Name, "role", "fallback")
		if entry.Name == "whisper" && entry.BaseURL != "" {
			checkers = append(checkers, health.Endpoint("whisper", entry.BaseURL))
		}
	}
	deps.STT = sttChain

	// ── Generation chain ──────────────────────────────────────────────────────
	genOpts := answerOptions(cfg.Answer)
	var classifierLLM llm.Provider
	if len(cfg.Providers.LLM) == 0 {
		deps.Generator = answer.Empty(genOpts...)
	} else {
		for i, entry := range cfg.Providers.LLM {
			p, err := reg.CreateLLM(entry)
			if err != nil {
				return deps, nil, nil, fmt.Errorf("create llm provider %q: %w", entry.Name, err)
			}
			if i == 0 {
				deps.Generator = answer.New(p, entry.Name, genOpts...)
				classifierLLM = p
			} else {
				deps.Generator.AddFallback(entry.Name, p)
			}
			slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)
		}
	}
	deps.Classifier = detect.NewClassifier(classifierLLM)

	// ── Embeddings ────────────────────────────────────────────────────────────
	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return deps, nil, nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		}
		deps.Embedder = p
		slog.Info("provider created", "kind", "embeddings", "name", name)
	}

	// ── Database-backed stores ────────────────────────────────────────────────
	var pool *pgxpool.Pool
	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pool, err = openDatabase(ctx, dsn)
		if err != nil {
			return deps, nil, nil, err
		}

		store := credits.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return deps, nil, nil, err
		}
		deps.Credits = store

		dims := cfg.Database.EmbeddingDimensions
		if dims <= 0 {
			// Size the vector column from the configured embeddings model
			// rather than a hardcoded guess.
			if deps.Embedder != nil {
				dims = deps.Embedder.Dimensions()
			} else {
				dims = defaultEmbeddingDimensions
			}
		}
		library := qalibrary.NewPostgresLibrary(pool, dims)
		if err := library.Migrate(ctx); err != nil {
			pool.Close()
			return deps, nil, nil, err
		}
		deps.Library = library

		checkers = append(checkers, health.Database(pool))
		slog.Info("database connected", "embedding_dimensions", dims)
	}

	return deps, checkers, pool, nil
}

// openDatabase creates a pgx pool with pgvector types registered on every
// connection.
func openDatabase(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: parse dsn: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

// sessionOptions converts the config section into session options, skipping
// zero values so built-in defaults apply.
func sessionOptions(cfg config.SessionConfig) []session.Option {
	var opts []session.Option
	if cfg.MaxBufferBytes > 0 {
		opts = append(opts, session.WithMaxBufferBytes(cfg.MaxBufferBytes))
	}
	if cfg.IdleTimeout > 0 {
		opts = append(opts, session.WithIdleTimeout(cfg.IdleTimeout.Std()))
	}
	if cfg.STTTimeout > 0 {
		opts = append(opts, session.WithSTTTimeout(cfg.STTTimeout.Std()))
	}
	if cfg.RecentWindowSize > 0 && cfg.RecentWindowAge > 0 {
		opts = append(opts, session.WithRecentWindow(cfg.RecentWindowSize, cfg.RecentWindowAge.Std()))
	}
	if cfg.SemanticThreshold > 0 {
		opts = append(opts, session.WithSemanticThreshold(cfg.SemanticThreshold))
	}
	if cfg.SampleRate > 0 && cfg.Channels > 0 {
		opts = append(opts, session.WithAudioFormat(session.AudioFormat{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
		}))
	}
	return opts
}

// answerOptions converts the answer config section into generator options.
func answerOptions(cfg config.AnswerConfig) []answer.Option {
	var opts []answer.Option
	if cfg.Temperature > 0 {
		opts = append(opts, answer.WithTemperature(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, answer.WithMaxTokens(cfg.MaxTokens))
	}
	return opts
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        answercue — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	for i, entry := range cfg.Providers.LLM {
		label := "LLM"
		if i > 0 {
			label = fmt.Sprintf("LLM #%d", i+1)
		}
		printProvider(label, entry.Name, entry.Model)
	}
	if len(cfg.Providers.LLM) == 0 {
		printProvider("LLM", "", "")
	}
	printProvider("STT", cfg.Providers.STT.Primary.Name, cfg.Providers.STT.Primary.Model)
	for i, entry := range cfg.Providers.STT.Fallbacks {
		printProvider(fmt.Sprintf("STT #%d", i+2), entry.Name, entry.Model)
	}
	printProvider("Embeddings", cfg.Providers.Embeddings.Name, cfg.Providers.Embeddings.Model)
	if cfg.Database.PostgresDSN != "" {
		fmt.Printf("║  Database        : %-19s ║\n", "connected")
	} else {
		fmt.Printf("║  Database        : %-19s ║\n", "(disabled)")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
