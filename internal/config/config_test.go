package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray voxestate.yaml or .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Transports.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Transports.HTTP.CORSOrigins)
	assert.Equal(t, "openai", cfg.Generator.Backend)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Generator.Model)
	assert.InDelta(t, 0.7, cfg.Generator.Temperature, 1e-9)
	assert.Equal(t, 1000, cfg.Generator.MaxTokens)
	assert.Equal(t, DefaultSystemPrompt, cfg.Generator.SystemPrompt)
	assert.Equal(t, "sk-test", cfg.Generator.OpenAI.APIKey)
	assert.Equal(t, "static/audio", cfg.Media.Dir)
	assert.Equal(t, "/static/audio", cfg.Media.Mount)
	assert.InDelta(t, 1.3, cfg.TTS.Speed, 1e-9)
	assert.Equal(t, 150, cfg.TTS.Local.Rate)
	assert.Equal(t, "female", cfg.TTS.Local.VoiceHint)
	assert.Equal(t, "gtranslate", cfg.TTS.Network.Backend)
	assert.Equal(t, 30*time.Second, cfg.TTS.Network.Timeout)
	assert.Equal(t, "browser", cfg.Opener.Backend)
}

func TestLoad_MissingKeyResolvesEmpty(t *testing.T) {
	chdir(t)
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Generator.OpenAI.APIKey)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
generator:
  backend: ollama
  max_tokens: 256
tts:
  local:
    engine: piper
  piper:
    voices:
      en: en_US-lessac-medium
media:
  dir: /tmp/vox
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("VOXESTATE_OPENER_BACKEND", "log")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Generator.Backend)
	assert.Equal(t, 256, cfg.Generator.MaxTokens)
	assert.Equal(t, "piper", cfg.TTS.Local.Engine)
	assert.Equal(t, "en_US-lessac-medium", cfg.TTS.Piper.Voices["en"])
	assert.Equal(t, "/tmp/vox", cfg.Media.Dir)
	assert.Equal(t, "log", cfg.Opener.Backend)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Generator.Gemini.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Generator: GeneratorConfig{Backend: "openai", Temperature: 0.7, MaxTokens: 1000},
			Language:  LanguageConfig{Default: "en"},
			Media:     MediaConfig{Mount: "/static/audio"},
			TTS: TTSConfig{
				Local:   LocalTTSConfig{Engine: "espeak"},
				Network: NetworkConfig{Backend: "gtranslate"},
			},
			Opener: OpenerConfig{Backend: "browser"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "generator backend", mutate: func(c *Config) { c.Generator.Backend = "claude" }, wantMsg: "generator backend"},
		{name: "temperature", mutate: func(c *Config) { c.Generator.Temperature = 3 }, wantMsg: "temperature"},
		{name: "max tokens", mutate: func(c *Config) { c.Generator.MaxTokens = 0 }, wantMsg: "max_tokens"},
		{name: "language", mutate: func(c *Config) { c.Language.Default = "fr" }, wantMsg: "language.default"},
		{name: "local engine", mutate: func(c *Config) { c.TTS.Local.Engine = "sapi" }, wantMsg: "tts.local.engine"},
		{name: "network backend", mutate: func(c *Config) { c.TTS.Network.Backend = "polly" }, wantMsg: "tts.network.backend"},
		{name: "opener", mutate: func(c *Config) { c.Opener.Backend = "xdg" }, wantMsg: "opener.backend"},
		{name: "relative mount", mutate: func(c *Config) { c.Media.Mount = "static/audio" }, wantMsg: "media.mount"},
		{name: "root mount", mutate: func(c *Config) { c.Media.Mount = "/" }, wantMsg: "media.mount"},
		{name: "engines disabled", mutate: func(c *Config) { c.TTS.Local.Engine = "none"; c.TTS.Network.Backend = "none" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("VOX_TEST_SECRET", "s3cret")
	assert.Equal(t, "s3cret", resolveEnvRef("${VOX_TEST_SECRET}"))
	assert.Equal(t, "literal", resolveEnvRef("literal"))
	assert.Empty(t, resolveEnvRef("${VOX_TEST_UNSET_VAR}"))
}
