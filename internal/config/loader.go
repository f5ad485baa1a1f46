package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt":        {"deepgram", "whisper"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// LLM chain: every entry needs a name, and a backend may appear only once
	// so failover order is unambiguous.
	llmSeen := make(map[string]int, len(cfg.Providers.LLM))
	for i, entry := range cfg.Providers.LLM {
		prefix := fmt.Sprintf("providers.llm[%d]", i)
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := llmSeen[entry.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of providers.llm[%d]", prefix, entry.Name, prev))
		}
		llmSeen[entry.Name] = i
		validateProviderName("llm", entry.Name)
	}
	if len(cfg.Providers.LLM) == 0 {
		slog.Warn("providers.llm is empty; unmatched questions will receive only the generic holding message")
	}

	// STT chain
	if cfg.Providers.STT.Primary.Name == "" {
		errs = append(errs, errors.New("providers.stt.primary.name is required"))
	} else {
		validateProviderName("stt", cfg.Providers.STT.Primary.Name)
	}
	for i, entry := range cfg.Providers.STT.Fallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.stt.fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("stt", entry.Name)
	}

	// Embeddings ↔ database dimensions
	if cfg.Providers.Embeddings.Name != "" {
		validateProviderName("embeddings", cfg.Providers.Embeddings.Name)
		if cfg.Database.EmbeddingDimensions <= 0 {
			slog.Warn("providers.embeddings is configured but database.embedding_dimensions is not set; defaulting to 1536")
		}
	}

	// Database availability
	if cfg.Database.PostgresDSN == "" {
		slog.Warn("database.postgres_dsn is empty; sessions will run unmetered and the answer library will not be available")
	}

	// Session tunables
	if cfg.Session.MaxBufferBytes < 0 {
		errs = append(errs, fmt.Errorf("session.max_buffer_bytes %d must not be negative", cfg.Session.MaxBufferBytes))
	}
	if cfg.Session.SemanticThreshold != 0 {
		if cfg.Session.SemanticThreshold <= 0 || cfg.Session.SemanticThreshold > 1 {
			errs = append(errs, fmt.Errorf("session.semantic_threshold %.2f is out of range (0, 1]", cfg.Session.SemanticThreshold))
		}
	}
	if cfg.Session.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("session.sample_rate %d must not be negative", cfg.Session.SampleRate))
	}
	if c := cfg.Session.Channels; c != 0 && c != 1 && c != 2 {
		errs = append(errs, fmt.Errorf("session.channels %d is invalid; valid values: 1 (mono), 2 (stereo)", c))
	}

	// Answer tunables
	if t := cfg.Answer.Temperature; t < 0 || t > 2 {
		errs = append(errs, fmt.Errorf("answer.temperature %.2f is out of range [0, 2]", t))
	}
	if cfg.Answer.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("answer.max_tokens %d must not be negative", cfg.Answer.MaxTokens))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
