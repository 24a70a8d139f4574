// Package message defines the core data types flowing through the voxestate pipeline.
package message

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyText is returned when the input text is empty after trimming.
	ErrEmptyText = errors.New("text must not be empty")

	// ErrUnsupportedLanguage is returned for a language code outside the supported table.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language is one entry of the supported-language table.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages is the fixed language table, in display order.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "ar", Name: "Arabic"},
}

// LookupLanguage returns the table entry for code.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// ValidateLanguage returns ErrUnsupportedLanguage (wrapped with the list of
// valid codes) when code is not in the table.
func ValidateLanguage(code string) error {
	if _, ok := LookupLanguage(code); ok {
		return nil
	}
	codes := make([]string, 0, len(SupportedLanguages))
	for _, l := range SupportedLanguages {
		codes = append(codes, l.Code)
	}
	return fmt.Errorf("%w %q, supported languages: %s", ErrUnsupportedLanguage, code, strings.Join(codes, ", "))
}

// ChatRequest is an incoming chat operation from any transport.
type ChatRequest struct {
	// Text is the user's free-text input. Required.
	Text string `json:"text"`

	// GenerateAudio asks for the answer to be rendered as speech.
	GenerateAudio bool `json:"generate_audio"`

	// OpenURLs asks for every URL in the answer to be opened (best effort).
	OpenURLs bool `json:"open_urls"`

	// Language is the ISO-639-1 code used for speech synthesis.
	Language string `json:"language"`

	// Model is the LLM model name.
	Model string `json:"model"`

	// Temperature is the sampling temperature (0.0-2.0).
	Temperature float64 `json:"temperature"`

	// MaxTokens is the completion token ceiling.
	MaxTokens int `json:"max_tokens"`

	// SystemPrompt is set by the server, never by the caller.
	SystemPrompt string `json:"-"`
}

// Validate checks the caller-controlled fields. The text check runs first so
// an empty request is always reported as empty.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if err := ValidateLanguage(r.Language); err != nil {
		return err
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range 0.0-2.0", r.Temperature)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", r.MaxTokens)
	}
	return nil
}

// AudioArtifact is a persisted audio file plus its public locator.
// It is either fully populated or absent.
type AudioArtifact struct {
	// StoragePath is the server-side file path.
	StoragePath string `json:"audio_path"`

	// PublicURL is the static-mount path, always starting with "/".
	PublicURL string `json:"audio_url"`

	// Engine names the synthesis variant that produced the file ("local" or "network").
	Engine string `json:"-"`
}

// ChatTurn is the outcome of one chat request. It is not persisted.
type ChatTurn struct {
	ID          string
	UserText    string
	AnswerText  string
	URLs        []string
	Language    string
	Audio       *AudioArtifact
	GeneratedAt time.Time
}

// ChatResponse is the external JSON contract for a chat operation.
type ChatResponse struct {
	Text      string   `json:"text"`
	AudioPath string   `json:"audio_path,omitempty"`
	AudioURL  string   `json:"audio_url,omitempty"`
	URLs      []string `json:"urls"`
	Language  string   `json:"language,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Response maps the turn to the external response contract.
func (t *ChatTurn) Response() ChatResponse {
	urls := t.URLs
	if urls == nil {
		urls = []string{}
	}
	resp := ChatResponse{
		Text:      t.AnswerText,
		URLs:      urls,
		Language:  t.Language,
		Timestamp: t.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if t.Audio != nil {
		resp.AudioPath = t.Audio.StoragePath
		resp.AudioURL = t.Audio.PublicURL
	}
	return resp
}

// TTSRequest is a standalone text-to-speech operation.
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`

	// Voice is advisory only; engines may ignore it.
	Voice string `json:"voice,omitempty"`
}

// Validate checks the text and language.
func (r *TTSRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	return ValidateLanguage(r.Language)
}

// TTSResponse is the external JSON contract for a TTS operation.
type TTSResponse struct {
	AudioURL string `json:"audio_url"`
}

// LanguagesResponse is the external JSON contract for the language listing.
type LanguagesResponse struct {
	Languages []Language `json:"languages"`
}
