// Package openai implements the Generator interface using OpenAI's
// Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/generator"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Generator uses the OpenAI Chat Completions API.
type Generator struct {
	apiKey       string
	chatURL      string
	defaultModel string
	client       *http.Client
}

// New creates a new OpenAI generator. It fails with generator.ErrMissingCredential
// when no API key is configured and generator.ErrClientUnavailable when the base
// URL is unusable.
func New(cfg config.OpenAIConfig, defaultModel string, timeout time.Duration) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: %w", generator.ErrMissingCredential)
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("openai base url %q: %w", base, generator.ErrClientUnavailable)
	}
	return &Generator{
		apiKey:       cfg.APIKey,
		chatURL:      strings.TrimRight(base, "/") + "/chat/completions",
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "openai" }

// Generate sends the system prompt and user text to the Chat Completions API.
func (g *Generator) Generate(ctx context.Context, r generator.Request) (*generator.Result, error) {
	model := r.Model
	if model == "" {
		model = g.defaultModel
	}

	messages := make([]chatMessage, 0, 2)
	if r.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: r.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: r.UserText})

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.chatURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat failed (status %d): %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from chat API")
	}

	result := generator.NewResult(chatResp.Choices[0].Message.Content)
	slog.Debug("generation complete", "backend", "openai", "model", model, "text_length", len(result.Text), "urls", len(result.URLs))
	return result, nil
}

// Close is a no-op for the OpenAI generator.
func (g *Generator) Close() error { return nil }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
