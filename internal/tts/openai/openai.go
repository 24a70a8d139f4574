// Package openai implements the network fallback engine on OpenAI's
// /audio/speech endpoint. Output is MP3.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "tts-1"
	defaultVoice   = "shimmer"
)

// Engine calls the OpenAI speech API.
type Engine struct {
	apiKey    string
	speechURL string
	model     string
	voice     string
	client    *http.Client
}

// New creates the engine. A missing API key is reported per call as
// tts.ErrEngineUnavailable so the backend records it as a fallback failure.
func New(cfg config.NetworkConfig) *Engine {
	base := cfg.Endpoint
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.OpenAI.Model
	if model == "" {
		model = defaultModel
	}
	voice := cfg.OpenAI.Voice
	if voice == "" {
		voice = defaultVoice
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		apiKey:    strings.TrimSpace(cfg.OpenAI.APIKey),
		speechURL: strings.TrimRight(base, "/") + "/audio/speech",
		model:     model,
		voice:     voice,
		client:    &http.Client{Timeout: timeout},
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "openai" }

// Extension returns "mp3".
func (e *Engine) Extension() string { return "mp3" }

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// TrySynthesize requests MP3 audio for req.Text and writes it to path. The
// configured voice is always used; req.Voice and req.Speed are ignored.
func (e *Engine) TrySynthesize(ctx context.Context, req tts.Request, path string) error {
	if e.apiKey == "" {
		return fmt.Errorf("%w: openai speech api key not configured", tts.ErrEngineUnavailable)
	}

	body, err := json.Marshal(speechRequest{
		Model:          e.model,
		Input:          req.Text,
		Voice:          e.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return fmt.Errorf("marshalling speech request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.speechURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}

	slog.Debug("openai speech synthesized", "bytes", len(audio), "model", e.model, "voice", e.voice)
	return os.WriteFile(path, audio, 0o644)
}

func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("openai speech api returned status %d: %s", resp.StatusCode, errResp.Error.Message)
	}
	return fmt.Errorf("openai speech api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

var _ tts.Engine = (*Engine)(nil)
