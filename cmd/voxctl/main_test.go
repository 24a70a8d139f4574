package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voxestate/internal/apperr"
	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/generator"
	"github.com/nadzzz/voxestate/internal/media"
	"github.com/nadzzz/voxestate/internal/pipeline"
	"github.com/nadzzz/voxestate/internal/transport"
	"github.com/nadzzz/voxestate/internal/tts"
)

func useMockService(t *testing.T, gen *generator.Mock) {
	t.Helper()
	alloc := media.New(config.MediaConfig{Dir: filepath.Join(t.TempDir(), "audio"), Mount: "/static/audio"})
	speaker := tts.NewMockSpeaker()
	backend := tts.NewBackend(config.TTSConfig{Speed: 1.3}, alloc,
		func(context.Context) (tts.Speaker, error) { return speaker, nil }, tts.NewMockEngine())
	p := pipeline.New(gen, backend, nil, pipeline.Defaults{Language: "en", Model: "m", Temperature: 0.7, MaxTokens: 100})

	orig := loadService
	loadService = func(context.Context) (transport.Service, func() error, error) {
		return p, p.Close, nil
	}
	t.Cleanup(func() { loadService = orig })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChat(t *testing.T) {
	gen := generator.NewMock("Try https://example.com/villas")
	useMockService(t, gen)

	out, err := run(t, "chat", "--temperature", "0", "--max-tokens", "50", "villas", "near", "the", "beach")
	require.NoError(t, err)
	assert.Contains(t, out, "Try https://example.com/villas")
	assert.Contains(t, out, "link: https://example.com/villas")
	assert.Contains(t, out, "audio: ")

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "villas near the beach", reqs[0].UserText)
	assert.Zero(t, reqs[0].Temperature)
	assert.Equal(t, 50, reqs[0].MaxTokens)
	assert.Equal(t, "m", reqs[0].Model)
}

func TestChat_JSON(t *testing.T) {
	useMockService(t, generator.NewMock("No links here."))

	out, err := run(t, "chat", "--json", "--audio=false", "hello")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "No links here.", resp["text"])
	assert.NotContains(t, resp, "audio_url")
}

func TestChat_GenerationError(t *testing.T) {
	gen := generator.NewMock("")
	gen.Err = errors.New("quota exceeded")
	useMockService(t, gen)

	_, err := run(t, "chat", "hello")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestSpeak(t *testing.T) {
	useMockService(t, generator.NewMock(""))

	out, err := run(t, "speak", "--language", "ar", "مرحبا")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^/static/audio/output_.+\.wav$`, lines[1])

	_, err = run(t, "speak", "--language", "fr", "bonjour")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLanguages(t *testing.T) {
	useMockService(t, generator.NewMock(""))

	out, err := run(t, "languages")
	require.NoError(t, err)
	assert.Equal(t, "en\tEnglish\nar\tArabic\n", out)
}

func TestArgsRequired(t *testing.T) {
	useMockService(t, generator.NewMock(""))
	_, err := run(t, "chat")
	assert.Error(t, err)
}
