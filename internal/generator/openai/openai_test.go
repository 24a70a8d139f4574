package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/generator"
)

func TestNew_Credentials(t *testing.T) {
	_, err := New(config.OpenAIConfig{}, "gpt-3.5-turbo", time.Second)
	assert.ErrorIs(t, err, generator.ErrMissingCredential)

	_, err = New(config.OpenAIConfig{APIKey: "sk", BaseURL: "::not a url"}, "gpt-3.5-turbo", time.Second)
	assert.ErrorIs(t, err, generator.ErrClientUnavailable)

	g, err := New(config.OpenAIConfig{APIKey: "sk"}, "gpt-3.5-turbo", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", g.chatURL)
	assert.Equal(t, "openai", g.Name())
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Look at https://listings.example/3br and https://listings.example/3br"}}]}`))
	}))
	defer srv.Close()

	g, err := New(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, "gpt-3.5-turbo", 5*time.Second)
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), generator.Request{
		UserText:     "Tell me about 3-bedroom houses",
		SystemPrompt: "You are a helpful real estate assistant.",
		Temperature:  0.7,
		MaxTokens:    1000,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a helpful real estate assistant.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Tell me about 3-bedroom houses", got.Messages[1].Content)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 1000, got.MaxTokens)

	assert.Equal(t, []string{"https://listings.example/3br", "https://listings.example/3br"}, res.URLs)
}

func TestGenerate_ModelOverride(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	g, err := New(config.OpenAIConfig{APIKey: "sk", BaseURL: srv.URL}, "gpt-3.5-turbo", time.Second)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), generator.Request{UserText: "hi", Model: "gpt-4o-mini", MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestGenerate_NoSystemPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	g, err := New(config.OpenAIConfig{APIKey: "sk", BaseURL: srv.URL}, "gpt-3.5-turbo", time.Second)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), generator.Request{UserText: "u"})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "u", got.Messages[0].Content)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "upstream error", status: http.StatusTooManyRequests, body: `{"error":"rate limited"}`, wantMsg: "status 429"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantMsg: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantMsg: "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := New(config.OpenAIConfig{APIKey: "sk", BaseURL: srv.URL}, "gpt-3.5-turbo", time.Second)
			require.NoError(t, err)

			_, err = g.Generate(context.Background(), generator.Request{UserText: "hi", MaxTokens: 10})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.EqualValues(t, 1, calls.Load(), "no retries")
		})
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	g, err := New(config.OpenAIConfig{APIKey: "sk", BaseURL: srv.URL}, "gpt-3.5-turbo", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, generator.Request{UserText: "hi", MaxTokens: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
