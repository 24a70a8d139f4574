package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/metrics"
)

const (
	variantLocal   = "local"
	variantNetwork = "network"
)

// state is one step of a synthesis call.
type state int

const (
	stateStart state = iota
	statePrimaryReady
	statePrimaryUnavailable
	stateFallbackAttempt
	stateVerify
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case statePrimaryReady:
		return "primary_ready"
	case statePrimaryUnavailable:
		return "primary_unavailable"
	case stateFallbackAttempt:
		return "fallback_attempt"
	case stateVerify:
		return "verify"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures a Backend.
type Option func(*Backend)

// WithVoiceSelector replaces the default voice-name heuristic.
func WithVoiceSelector(sel VoiceSelector) Option {
	return func(b *Backend) { b.selectVoice = sel }
}

// WithMetrics records per-variant outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default() tagged with
// component=tts.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// Backend is the process-wide synthesis backend. It owns the single local
// Speaker instance; the mutex is held for initialization plus one primary
// synthesis, and released before the network fallback runs.
type Backend struct {
	alloc       Allocator
	newSpeaker  SpeakerFactory // nil when no local engine is configured
	fallback    Engine         // nil when no network engine is configured
	rate        int
	volume      float64
	speed       float64
	selectVoice VoiceSelector
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu      sync.Mutex
	speaker Speaker
	voices  []Voice // installed voices, from initialization
	voiceID string  // voice chosen at initialization, "" for the engine default
	ready   atomic.Bool
}

// NewBackend creates a Backend. Nothing is initialized until Init or the first
// Synthesize call.
func NewBackend(cfg config.TTSConfig, alloc Allocator, newSpeaker SpeakerFactory, fallback Engine, opts ...Option) *Backend {
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1.0
	}
	b := &Backend{
		alloc:       alloc,
		newSpeaker:  newSpeaker,
		fallback:    fallback,
		rate:        cfg.Local.Rate,
		volume:      cfg.Local.Volume,
		speed:       speed,
		selectVoice: PreferVoice(cfg.Local.VoiceHint),
		logger:      slog.Default().With("component", "tts"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PrimaryReady reports whether the local engine has initialized successfully.
func (b *Backend) PrimaryReady() bool {
	return b.ready.Load()
}

// Init eagerly initializes the local engine. A failure here is not fatal;
// Synthesize retries initialization on every call until it succeeds.
func (b *Backend) Init(ctx context.Context) error {
	if b.newSpeaker == nil {
		return fmt.Errorf("%w: no local engine configured", ErrEngineUnavailable)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready.Load() {
		return nil
	}
	return b.initSpeaker(ctx)
}

// initSpeaker constructs and configures the Speaker. Caller holds b.mu.
func (b *Backend) initSpeaker(ctx context.Context) error {
	sp, err := b.newSpeaker(ctx)
	if err != nil {
		return err
	}
	if sp == nil {
		return fmt.Errorf("%w: no engine instance returned", ErrEngineUnavailable)
	}

	sp.SetRate(b.rate)
	sp.SetVolume(b.volume)

	voice, voiceID := "default", ""
	voices, err := sp.Voices(ctx)
	if err != nil {
		b.logger.Warn("could not list voices, keeping engine default", "engine", sp.Name(), "error", err)
	} else if v, ok := b.selectVoice(voices); ok {
		sp.SetVoice(v.ID)
		voice, voiceID = v.Name, v.ID
	}

	b.speaker = sp
	b.voices = voices
	b.voiceID = voiceID
	b.ready.Store(true)
	b.logger.Info("local speech engine initialized", "engine", sp.Name(), "voice", voice, "voices", len(voices))
	return nil
}

// call is the per-request state threaded through the state machine.
type call struct {
	req      Request
	failures SynthesisError
	artifact *Artifact
	locked   bool
}

// Synthesize renders req.Text to a new audio file and returns its artifact.
// It reaches exactly one of two outcomes: a verified, non-empty file, or a
// *SynthesisError naming every failed stage. Files are never deleted.
func (b *Backend) Synthesize(ctx context.Context, req Request) (*Artifact, error) {
	if req.Speed <= 0 {
		req.Speed = b.speed
	}

	if err := b.alloc.EnsureDir(); err != nil {
		return nil, &SynthesisError{Failures: []StageError{{Stage: StageOutputDir, Err: err}}}
	}

	c := &call{req: req}
	defer func() {
		if c.locked {
			b.mu.Unlock()
		}
	}()

	st := stateStart
	for st != stateDone && st != stateFailed {
		next := b.step(ctx, st, c)
		b.logger.Debug("synthesis transition", "from", st.String(), "to", next.String())
		st = next
	}

	if st == stateFailed {
		return nil, &c.failures
	}
	b.logger.Info("speech synthesized", "engine", c.artifact.Engine, "path", c.artifact.StoragePath, "url", c.artifact.PublicURL)
	return c.artifact, nil
}

// step executes one state and returns the next one.
func (b *Backend) step(ctx context.Context, st state, c *call) state {
	switch st {
	case stateStart:
		if b.newSpeaker == nil {
			c.failures.add(StageInit, fmt.Errorf("%w: no local engine configured", ErrEngineUnavailable))
			b.metrics.SynthesisAttempt(variantLocal, "unavailable")
			return statePrimaryUnavailable
		}
		b.mu.Lock()
		c.locked = true
		if !b.ready.Load() {
			if err := b.initSpeaker(ctx); err != nil {
				c.failures.add(StageInit, err)
				b.metrics.SynthesisAttempt(variantLocal, "unavailable")
				b.logger.Warn("local speech engine unavailable, using fallback", "error", err)
				return statePrimaryUnavailable
			}
		}
		return statePrimaryReady

	case statePrimaryReady:
		name := b.alloc.Allocate("wav")
		path := b.alloc.Path(name)
		// A requested voice applies to this call only.
		override, ok := matchVoice(b.voices, c.req.Voice)
		swap := ok && override.ID != b.voiceID
		if swap {
			b.speaker.SetVoice(override.ID)
		}
		err := b.speaker.SaveToFile(ctx, c.req.Text, c.req.Language, c.req.Speed, path)
		if swap {
			b.speaker.SetVoice(b.voiceID)
		}
		b.mu.Unlock()
		c.locked = false
		if err != nil {
			c.failures.add(StagePrimary, err)
			outcome := "error"
			if errors.Is(err, ErrEmptyOutput) {
				outcome = "empty"
			}
			b.metrics.SynthesisAttempt(variantLocal, outcome)
			b.logger.Warn("local synthesis failed, using fallback", "engine", b.speaker.Name(), "error", err)
			return stateFallbackAttempt
		}
		c.artifact = &Artifact{StoragePath: path, PublicURL: b.alloc.PublicURL(name), Engine: variantLocal}
		return stateVerify

	case statePrimaryUnavailable:
		if c.locked {
			b.mu.Unlock()
			c.locked = false
		}
		return stateFallbackAttempt

	case stateFallbackAttempt:
		c.artifact = nil
		if b.fallback == nil {
			c.failures.add(StageFallback, fmt.Errorf("%w: no network engine configured", ErrEngineUnavailable))
			b.metrics.SynthesisAttempt(variantNetwork, "unavailable")
			return stateFailed
		}
		name := b.alloc.Allocate(b.fallback.Extension())
		path := b.alloc.Path(name)
		if err := b.fallback.TrySynthesize(ctx, c.req, path); err != nil {
			c.failures.add(StageFallback, err)
			outcome := "error"
			if errors.Is(err, ErrEngineUnavailable) {
				outcome = "unavailable"
			}
			b.metrics.SynthesisAttempt(variantNetwork, outcome)
			b.logger.Error("fallback synthesis failed", "engine", b.fallback.Name(), "error", err)
			return stateFailed
		}
		c.artifact = &Artifact{StoragePath: path, PublicURL: b.alloc.PublicURL(name), Engine: variantNetwork}
		return stateVerify

	case stateVerify:
		// Engines have been seen reporting success with an empty or missing file.
		if err := verifyOutput(c.artifact.StoragePath); err != nil {
			b.metrics.SynthesisAttempt(c.artifact.Engine, "empty")
			if c.artifact.Engine == variantLocal {
				c.failures.add(StagePrimary, err)
				b.logger.Warn("local synthesis produced no audio, using fallback", "path", c.artifact.StoragePath)
				return stateFallbackAttempt
			}
			c.failures.add(StageFallback, err)
			return stateFailed
		}
		b.metrics.SynthesisAttempt(c.artifact.Engine, "success")
		return stateDone

	default:
		c.failures.add(StageFallback, fmt.Errorf("unexpected synthesis state %v", st))
		return stateFailed
	}
}

// verifyOutput checks that path exists and is non-empty.
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s was not created", ErrEmptyOutput, path)
	}
	if err != nil {
		return fmt.Errorf("checking output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is zero bytes", ErrEmptyOutput, path)
	}
	return nil
}
