// Package gemini implements the Generator interface using the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/generator"
)

// Generator calls Gemini's GenerateContent.
type Generator struct {
	client *genai.Client
	model  string
}

// New creates a Gemini generator backed by the Gemini Developer API.
func New(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", generator.ErrMissingCredential)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w: %w", generator.ErrClientUnavailable, err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Generator{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "gemini" }

// Generate sends the user text with the system prompt as system instruction.
func (g *Generator) Generate(ctx context.Context, r generator.Request) (*generator.Result, error) {
	model := r.Model
	if model == "" {
		model = g.model
	}

	temperature := float32(r.Temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(r.MaxTokens),
	}
	if r.SystemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: r.SystemPrompt}},
		}
	}

	genResp, err := g.client.Models.GenerateContent(ctx, model, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: r.UserText}},
		},
	}, genCfg)
	if err != nil {
		return nil, fmt.Errorf("generation error: %w", err)
	}

	text, ok := firstText(genResp)
	if !ok {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	result := generator.NewResult(text)
	slog.Debug("generation complete", "backend", "gemini", "model", model, "text_length", len(result.Text), "urls", len(result.URLs))
	return result, nil
}

// Close is a no-op; the SDK client holds no long-lived connections.
func (g *Generator) Close() error { return nil }

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), true
}
