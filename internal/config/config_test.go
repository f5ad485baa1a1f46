package config_test

import (
	"errors"
	"testing"

	"github.com/answercue/answercue/internal/config"
	"github.com/answercue/answercue/pkg/provider/embeddings"
	embmock "github.com/answercue/answercue/pkg/provider/embeddings/mock"
	"github.com/answercue/answercue/pkg/provider/llm"
	llmmock "github.com/answercue/answercue/pkg/provider/llm/mock"
	"github.com/answercue/answercue/pkg/provider/stt"
	sttmock "github.com/answercue/answercue/pkg/provider/stt/mock"
)

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()
	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if config.LogLevel("trace").IsValid() {
		t.Error("\"trace\" should be invalid")
	}
	if config.LogLevel("").IsValid() {
		t.Error("empty level should be invalid")
	}
}

func TestRegistry_CreateLLM(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterLLM("mockllm", func(entry config.ProviderEntry) (llm.Provider, error) {
		gotEntry = entry
		return &llmmock.Provider{}, nil
	})

	p, err := reg.CreateLLM(config.ProviderEntry{Name: "mockllm", Model: "m1", APIKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected a provider")
	}
	if gotEntry.Model != "m1" || gotEntry.APIKey != "key" {
		t.Errorf("factory received %+v", gotEntry)
	}
}

func TestRegistry_CreateSTTAndEmbeddings(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterSTT("mockstt", func(config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{}, nil
	})
	reg.RegisterEmbeddings("mockemb", func(config.ProviderEntry) (embeddings.Provider, error) {
		return &embmock.Provider{}, nil
	})

	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "mockstt"}); err != nil {
		t.Errorf("CreateSTT: %v", err)
	}
	if _, err := reg.CreateEmbeddings(config.ProviderEntry{Name: "mockemb"}); err != nil {
		t.Errorf("CreateEmbeddings: %v", err)
	}
}

func TestRegistry_UnregisteredProvider(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	_, err := reg.CreateLLM(config.ProviderEntry{Name: "nope"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateLLM error = %v, want ErrProviderNotRegistered", err)
	}
	_, err = reg.CreateSTT(config.ProviderEntry{Name: "nope"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateSTT error = %v, want ErrProviderNotRegistered", err)
	}
	_, err = reg.CreateEmbeddings(config.ProviderEntry{Name: "nope"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateEmbeddings error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_OverwriteRegistration(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	first := &llmmock.Provider{}
	second := &llmmock.Provider{}
	reg.RegisterLLM("dup", func(config.ProviderEntry) (llm.Provider, error) { return first, nil })
	reg.RegisterLLM("dup", func(config.ProviderEntry) (llm.Provider, error) { return second, nil })

	p, err := reg.CreateLLM(config.ProviderEntry{Name: "dup"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != second {
		t.Error("later registration should win")
	}
}
