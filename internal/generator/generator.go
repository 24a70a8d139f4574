// Package generator defines the interface for LLM answer generation.
//
// A generator takes the user's text plus sampling parameters and returns a
// single answer. voxestate ships with three backends: OpenAI (cloud),
// Ollama (self-hosted) and Gemini.
package generator

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrMissingCredential is returned by a constructor when the backend needs
	// an API key and none is configured.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrClientUnavailable is returned when the backend client cannot be built.
	ErrClientUnavailable = errors.New("LLM client unavailable")
)

// Request is one generation call.
type Request struct {
	// UserText is sent as the user message.
	UserText string

	// SystemPrompt is sent before the user message.
	SystemPrompt string

	// Model overrides the backend's configured model when non-empty.
	Model string

	Temperature float64
	MaxTokens   int
}

// Result is the answer text plus the URLs found in it.
type Result struct {
	Text string
	URLs []string
}

// Generator is the interface for answer generation backends.
type Generator interface {
	// Name returns the backend identifier (e.g., "openai", "ollama").
	Name() string

	// Generate makes exactly one completion call. No retries.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Close releases any resources held by the backend.
	Close() error
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// ExtractURLs returns every http(s) URL in text, in order of appearance,
// duplicates included. A URL runs until whitespace, '<', '>', '"' or '\''.
// The result is never nil.
func ExtractURLs(text string) []string {
	urls := urlPattern.FindAllString(text, -1)
	if urls == nil {
		return []string{}
	}
	return urls
}

// NewResult builds a Result from raw answer text.
func NewResult(text string) *Result {
	return &Result{Text: text, URLs: ExtractURLs(text)}
}
