// Package pipeline implements the chat orchestrator.
//
// A chat request runs through a fixed sequence: validate, generate the
// answer, optionally synthesize speech, optionally open extracted URLs. Only
// validation and generation failures abort the request. Speech and URL
// failures are logged and degrade the response by leaving the feature out.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/voxestate/internal/apperr"
	"github.com/nadzzz/voxestate/internal/generator"
	"github.com/nadzzz/voxestate/internal/message"
	"github.com/nadzzz/voxestate/internal/metrics"
	"github.com/nadzzz/voxestate/internal/opener"
	"github.com/nadzzz/voxestate/internal/tts"
)

// Stage names used in errors, logs and metrics.
const (
	StageValidation = "validation"
	StageGeneration = "generation"
	StageSynthesis  = "synthesis"
	StageOpenURLs   = "open_urls"
)

// ErrSynthesisDisabled is returned by Speak when no synthesizer is configured.
var ErrSynthesisDisabled = errors.New("speech synthesis is disabled")

// Synthesizer renders text to a stored audio artifact. Implemented by tts.Backend.
type Synthesizer interface {
	Synthesize(ctx context.Context, req tts.Request) (*tts.Artifact, error)
	PrimaryReady() bool
}

// Defaults are the request parameters substituted when a caller omits them.
type Defaults struct {
	Language     string
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records stage timings and outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides time.Now for the turn timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline is the central request engine shared by every transport.
type Pipeline struct {
	generator   generator.Generator
	synthesizer Synthesizer   // nil if speech is disabled
	opener      opener.Opener // nil if URL opening is disabled
	defaults    Defaults

	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Pipeline. synth and op may be nil.
func New(gen generator.Generator, synth Synthesizer, op opener.Opener, defaults Defaults, opts ...Option) *Pipeline {
	if defaults.Language == "" {
		defaults.Language = "en"
	}
	p := &Pipeline{
		generator:   gen,
		synthesizer: synth,
		opener:      op,
		defaults:    defaults,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Defaults returns the configured request defaults.
func (p *Pipeline) Defaults() Defaults { return p.defaults }

// NewChatRequest returns a request for text with every default filled in.
// Audio and URL opening default to on. Transports decode caller input on
// top of it.
func (p *Pipeline) NewChatRequest(text string) message.ChatRequest {
	return message.ChatRequest{
		Text:          text,
		GenerateAudio: true,
		OpenURLs:      true,
		Language:      p.defaults.Language,
		Model:         p.defaults.Model,
		Temperature:   p.defaults.Temperature,
		MaxTokens:     p.defaults.MaxTokens,
	}
}

// NewTTSRequest returns a TTS request for text in the default language.
func (p *Pipeline) NewTTSRequest(text string) message.TTSRequest {
	return message.TTSRequest{Text: text, Language: p.defaults.Language}
}

// Languages returns the supported-language table in display order.
func (p *Pipeline) Languages() []message.Language {
	return append([]message.Language(nil), message.SupportedLanguages...)
}

// PrimaryReady reports whether the on-device speech engine has initialized.
func (p *Pipeline) PrimaryReady() bool {
	return p.synthesizer != nil && p.synthesizer.PrimaryReady()
}

// Process runs one chat request through the pipeline.
func (p *Pipeline) Process(ctx context.Context, req message.ChatRequest) (*message.ChatTurn, error) {
	defer p.metrics.TrackRequest()()

	turn := &message.ChatTurn{ID: uuid.NewString(), UserText: req.Text}
	logger := p.logger.With("request_id", turn.ID)

	// Step 1: Validate. Nothing downstream runs on failure.
	if req.SystemPrompt == "" {
		req.SystemPrompt = p.defaults.SystemPrompt
	}
	if req.Language == "" {
		req.Language = p.defaults.Language
	}
	if err := req.Validate(); err != nil {
		logger.Info("chat request rejected", "error", err)
		return nil, apperr.Validation(StageValidation, err)
	}
	turn.Language = req.Language
	logger.Info("chat started", "text_length", len(req.Text), "generate_audio", req.GenerateAudio,
		"open_urls", req.OpenURLs, "language", req.Language)

	// Step 2: Generate the answer. Fatal on failure.
	start := time.Now()
	res, err := p.generator.Generate(ctx, generator.Request{
		UserText:     req.Text,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	p.metrics.ObserveStage(StageGeneration, start, err)
	if err != nil {
		logger.Error("generation failed", "backend", p.generator.Name(), "error", err)
		return nil, apperr.Upstream(StageGeneration, err)
	}
	turn.AnswerText = res.Text
	turn.URLs = res.URLs
	logger.Info("generation complete", "backend", p.generator.Name(), "answer_length", len(res.Text),
		"urls", len(res.URLs), "duration", time.Since(start))

	// Step 3: Synthesize speech. Failure leaves the audio fields absent.
	if req.GenerateAudio && strings.TrimSpace(turn.AnswerText) != "" {
		turn.Audio = p.synthesize(ctx, logger, turn.AnswerText, req.Language)
	}

	// Step 4: Open URLs, best effort.
	if req.OpenURLs && len(turn.URLs) > 0 {
		p.openURLs(ctx, logger, turn.URLs)
	}

	turn.GeneratedAt = p.now()
	logger.Info("chat complete", "has_audio", turn.Audio != nil)
	return turn, nil
}

func (p *Pipeline) synthesize(ctx context.Context, logger *slog.Logger, text, language string) *message.AudioArtifact {
	if p.synthesizer == nil {
		logger.Warn("audio requested but speech synthesis is disabled")
		return nil
	}
	start := time.Now()
	art, err := p.synthesizer.Synthesize(ctx, tts.Request{Text: text, Language: language})
	p.metrics.ObserveStage(StageSynthesis, start, err)
	if err != nil {
		logger.Warn("speech synthesis failed, continuing without audio", "error", err)
		return nil
	}
	logger.Info("speech synthesis complete", "engine", art.Engine, "audio_url", art.PublicURL)
	return &message.AudioArtifact{StoragePath: art.StoragePath, PublicURL: art.PublicURL, Engine: art.Engine}
}

func (p *Pipeline) openURLs(ctx context.Context, logger *slog.Logger, urls []string) {
	if p.opener == nil {
		logger.Debug("url opening disabled", "urls", len(urls))
		return
	}
	start := time.Now()
	var failed int
	for _, u := range urls {
		err := p.opener.Open(ctx, u)
		p.metrics.URLOpen(err)
		if err != nil {
			failed++
			logger.Warn("failed to open url", "url", u, "error", apperr.BestEffort(StageOpenURLs, err))
			continue
		}
		logger.Debug("opened url", "url", u, "opener", p.opener.Name())
	}
	var err error
	if failed > 0 {
		err = errors.New("one or more urls failed to open")
	}
	p.metrics.ObserveStage(StageOpenURLs, start, err)
}

// Speak renders text as speech. Unlike Process, a synthesis failure is
// returned to the caller because audio is the whole result.
func (p *Pipeline) Speak(ctx context.Context, req message.TTSRequest) (*message.AudioArtifact, error) {
	defer p.metrics.TrackRequest()()

	if req.Language == "" {
		req.Language = p.defaults.Language
	}
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(StageValidation, err)
	}
	if p.synthesizer == nil {
		return nil, apperr.Configuration(StageSynthesis, ErrSynthesisDisabled)
	}

	start := time.Now()
	art, err := p.synthesizer.Synthesize(ctx, tts.Request{Text: req.Text, Language: req.Language, Voice: req.Voice})
	p.metrics.ObserveStage(StageSynthesis, start, err)
	if err != nil {
		p.logger.Error("speech synthesis failed", "language", req.Language, "error", err)
		return nil, apperr.Synthesis(StageSynthesis, err)
	}
	p.logger.Info("speech synthesis complete", "engine", art.Engine, "audio_url", art.PublicURL)
	return &message.AudioArtifact{StoragePath: art.StoragePath, PublicURL: art.PublicURL, Engine: art.Engine}, nil
}

// Close releases the generator.
func (p *Pipeline) Close() error {
	return p.generator.Close()
}
