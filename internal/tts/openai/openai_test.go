package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

func TestTrySynthesize(t *testing.T) {
	got := make(chan speechRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body speechRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got <- body
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	}))
	defer srv.Close()

	e := New(config.NetworkConfig{
		Endpoint: srv.URL + "/v1",
		OpenAI:   config.NetworkOpenAIConfig{APIKey: "sk-test", Voice: "nova"},
	})
	assert.Equal(t, "openai", e.Name())
	assert.Equal(t, "mp3", e.Extension())

	out := filepath.Join(t.TempDir(), "a.mp3")
	req := tts.Request{Text: "Listing in Dubai Marina", Language: "en", Voice: "alloy", Speed: 1.3}
	require.NoError(t, e.TrySynthesize(context.Background(), req, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(data))

	body := <-got
	assert.Equal(t, "tts-1", body.Model)
	assert.Equal(t, "nova", body.Voice)
	assert.Equal(t, "mp3", body.ResponseFormat)
	assert.Equal(t, "Listing in Dubai Marina", body.Input)
}

func TestTrySynthesize_MissingKey(t *testing.T) {
	e := New(config.NetworkConfig{})
	err := e.TrySynthesize(context.Background(), tts.Request{Text: "x"}, filepath.Join(t.TempDir(), "x.mp3"))
	assert.ErrorIs(t, err, tts.ErrEngineUnavailable)
}

func TestTrySynthesize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	e := New(config.NetworkConfig{Endpoint: srv.URL, OpenAI: config.NetworkOpenAIConfig{APIKey: "bad"}})
	out := filepath.Join(t.TempDir(), "x.mp3")
	err := e.TrySynthesize(context.Background(), tts.Request{Text: "x"}, out)
	assert.ErrorContains(t, err, "status 401: Incorrect API key provided")
	assert.NoFileExists(t, out)
}
