// Package tts turns answer text into a persisted audio artifact.
//
// Two engine variants exist. The local variant drives an on-device Speaker
// (espeak, Piper) and writes WAV. The network variant calls a remote service
// (Google Translate TTS, OpenAI speech) and writes MP3. Backend tries the
// local variant first and falls back to the network variant when the local
// engine is unavailable or fails at runtime.
package tts

import (
	"context"
)

// Request is one synthesis call.
type Request struct {
	Text     string
	Language string // ISO-639-1 code, one of the supported languages

	// Voice is advisory: a voice id or name fragment applied to the local
	// engine for this call only when it matches an installed voice. Network
	// engines ignore it.
	Voice string

	// Speed is a rate multiplier. Network engines ignore it.
	Speed float64
}

// Artifact is a verified audio file plus its public locator.
type Artifact struct {
	StoragePath string
	PublicURL   string
	Engine      string // "local" or "network"
}

// Voice describes one voice offered by a Speaker.
type Voice struct {
	ID        string
	Name      string
	Languages []string
}

// Speaker is an on-device synthesizer handle. Its rate, volume and voice are
// engine-global state, so implementations need not be safe for concurrent use;
// Backend serializes every call.
type Speaker interface {
	// Name identifies the engine (e.g., "espeak", "piper").
	Name() string

	// Voices lists the installed voices.
	Voices(ctx context.Context) ([]Voice, error)

	SetRate(wordsPerMinute int)
	SetVolume(volume float64)
	SetVoice(id string)

	// SaveToFile renders text to a WAV file at path and returns once the
	// engine has finished writing.
	SaveToFile(ctx context.Context, text, language string, speed float64, path string) error
}

// SpeakerFactory constructs the Speaker. It is called lazily and again on
// every request until it succeeds once.
type SpeakerFactory func(ctx context.Context) (Speaker, error)

// Engine is a network synthesizer used as the fallback variant.
type Engine interface {
	// Name identifies the engine (e.g., "gtranslate", "openai").
	Name() string

	// Extension is the file extension of the produced audio, without the dot.
	Extension() string

	// TrySynthesize writes audio for req to path.
	TrySynthesize(ctx context.Context, req Request, path string) error
}

// Allocator hands out output filenames. Implemented by media.Allocator.
type Allocator interface {
	EnsureDir() error
	Allocate(ext string) string
	Path(name string) string
	PublicURL(name string) string
}
