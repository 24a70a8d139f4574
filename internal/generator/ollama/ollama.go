// Package ollama implements the Generator interface using a self-hosted model.
//
// It supports Ollama's native /api/generate endpoint and any OpenAI-compatible
// chat endpoint (e.g., Ollama's /v1/chat/completions, vLLM, llama.cpp server).
package ollama

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

// Generator talks to a self-hosted LLM endpoint.
type Generator struct {
	endpoint string
	model    string
	native   bool // endpoint speaks Ollama's /api/generate format
	client   *http.Client
}

// New creates a new Ollama generator. No credential is required, but the
// endpoint must be an absolute http(s) URL.
func New(cfg config.OllamaConfig, timeout time.Duration) (*Generator, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("ollama endpoint %q: %w", cfg.Endpoint, generator.ErrClientUnavailable)
	}
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Generator{
		endpoint: cfg.Endpoint,
		model:    model,
		native:   strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/api/generate"),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "ollama" }

// Generate sends the prompt to the local LLM endpoint.
func (g *Generator) Generate(ctx context.Context, r generator.Request) (*generator.Result, error) {
	model := r.Model
	if model == "" {
		model = g.model
	}

	var reqBody map[string]any
	if g.native {
		reqBody = map[string]any{
			"model":  model,
			"prompt": r.UserText,
			"stream": false,
			"options": map[string]any{
				"temperature": r.Temperature,
				"num_predict": r.MaxTokens,
			},
		}
		if r.SystemPrompt != "" {
			reqBody["system"] = r.SystemPrompt
		}
	} else {
		messages := make([]map[string]string, 0, 2)
		if r.SystemPrompt != "" {
			messages = append(messages, map[string]string{"role": "system", "content": r.SystemPrompt})
		}
		messages = append(messages, map[string]string{"role": "user", "content": r.UserText})
		reqBody = map[string]any{
			"model":       model,
			"messages":    messages,
			"temperature": r.Temperature,
			"max_tokens":  r.MaxTokens,
			"stream":      false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading LLM response: %w", err)
	}

	content, err := extractContent(respData)
	if err != nil {
		return nil, err
	}

	result := generator.NewResult(content)
	slog.Debug("generation complete", "backend", "ollama", "model", model, "text_length", len(result.Text), "urls", len(result.URLs))
	return result, nil
}

// Close is a no-op for the Ollama generator.
func (g *Generator) Close() error { return nil }

// extractContent reads the answer from either response shape.
func extractContent(data []byte) (string, error) {
	var resp struct {
		// OpenAI-compatible: {"choices": [{"message": {"content": "..."}}]}
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`

		// Ollama native: {"response": "...", "done": true}
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decoding LLM response: %w", err)
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	if resp.Response != nil {
		return *resp.Response, nil
	}
	return "", fmt.Errorf("unrecognised LLM response: %.200s", data)
}
