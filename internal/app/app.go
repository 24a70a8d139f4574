// Package app wires configuration into a ready-to-serve pipeline. It is
// shared by the daemon and the CLI so both select backends the same way.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/voxestate/internal/apperr"
	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/generator"
	geminigen "github.com/nadzzz/voxestate/internal/generator/gemini"
	ollamagen "github.com/nadzzz/voxestate/internal/generator/ollama"
	openaigen "github.com/nadzzz/voxestate/internal/generator/openai"
	"github.com/nadzzz/voxestate/internal/media"
	"github.com/nadzzz/voxestate/internal/metrics"
	"github.com/nadzzz/voxestate/internal/opener"
	"github.com/nadzzz/voxestate/internal/pipeline"
	"github.com/nadzzz/voxestate/internal/tts"
	"github.com/nadzzz/voxestate/internal/tts/espeak"
	"github.com/nadzzz/voxestate/internal/tts/gtranslate"
	openaitts "github.com/nadzzz/voxestate/internal/tts/openai"
	"github.com/nadzzz/voxestate/internal/tts/piper"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Allocator *media.Allocator
	Speech    *tts.Backend
	Pipeline  *pipeline.Pipeline
}

// New builds every component. A missing credential or unusable LLM client
// is returned as a configuration error so the caller can refuse to start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	gen, model, err := NewGenerator(ctx, cfg.Generator)
	if err != nil {
		return nil, apperr.Configuration("generator", err)
	}

	op, err := opener.New(cfg.Opener)
	if err != nil {
		return nil, apperr.Configuration("opener", err)
	}

	m := metrics.New()
	alloc := media.New(cfg.Media)
	speech := tts.NewBackend(cfg.TTS, alloc, NewSpeakerFactory(cfg.TTS), NewFallback(cfg.TTS.Network),
		tts.WithVoiceSelector(tts.PreferVoice(cfg.TTS.Local.VoiceHint)),
		tts.WithMetrics(m),
		tts.WithLogger(slog.With("component", "tts")),
	)

	p := pipeline.New(gen, speech, op, pipeline.Defaults{
		Language:     cfg.Language.Default,
		Model:        model,
		Temperature:  cfg.Generator.Temperature,
		MaxTokens:    cfg.Generator.MaxTokens,
		SystemPrompt: cfg.Generator.SystemPrompt,
	}, pipeline.WithMetrics(m), pipeline.WithLogger(slog.With("component", "pipeline")))

	slog.Info("pipeline assembled",
		"generator", gen.Name(),
		"model", model,
		"tts_local", cfg.TTS.Local.Engine,
		"tts_network", cfg.TTS.Network.Backend,
		"opener", op.Name(),
		"media_dir", alloc.Dir())

	return &App{Config: cfg, Metrics: m, Allocator: alloc, Speech: speech, Pipeline: p}, nil
}

// Close releases the generator.
func (a *App) Close() error {
	return a.Pipeline.Close()
}

// NewGenerator builds the configured LLM backend and returns it with the
// model it uses by default.
func NewGenerator(ctx context.Context, cfg config.GeneratorConfig) (generator.Generator, string, error) {
	switch cfg.Backend {
	case "openai":
		g, err := openaigen.New(cfg.OpenAI, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, "", err
		}
		return g, cfg.Model, nil
	case "ollama":
		g, err := ollamagen.New(cfg.Ollama, cfg.Timeout)
		if err != nil {
			return nil, "", err
		}
		return g, firstNonEmpty(cfg.Ollama.Model, cfg.Model), nil
	case "gemini":
		g, err := geminigen.New(ctx, cfg.Gemini, cfg.Timeout)
		if err != nil {
			return nil, "", err
		}
		return g, firstNonEmpty(cfg.Gemini.Model, cfg.Model), nil
	default:
		return nil, "", fmt.Errorf("unknown generator backend %q", cfg.Backend)
	}
}

// NewSpeakerFactory returns the factory for the configured local engine, or
// nil when the local engine is disabled.
func NewSpeakerFactory(cfg config.TTSConfig) tts.SpeakerFactory {
	switch cfg.Local.Engine {
	case "espeak":
		return espeak.Factory(cfg.Local)
	case "piper":
		return piper.Factory(cfg.Piper)
	default:
		return nil
	}
}

// NewFallback returns the configured network engine, or nil when disabled.
func NewFallback(cfg config.NetworkConfig) tts.Engine {
	switch cfg.Backend {
	case "gtranslate":
		return gtranslate.New(cfg)
	case "openai":
		return openaitts.New(cfg)
	default:
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
