// Package config handles loading and validating the voxestate configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSystemPrompt is the assistant persona sent with every chat request.
const DefaultSystemPrompt = "You are a helpful real estate assistant. Provide detailed and accurate information " +
	"about properties, market trends, and answer any real estate related questions."

// Config is the root configuration for the voxestate daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Language   LanguageConfig   `mapstructure:"language"`
	Media      MediaConfig      `mapstructure:"media"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Opener     OpenerConfig     `mapstructure:"opener"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the REST transport.
type HTTPConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// GeneratorConfig selects and configures the LLM backend.
type GeneratorConfig struct {
	Backend      string        `mapstructure:"backend"` // "openai", "ollama" or "gemini"
	Model        string        `mapstructure:"model"`   // default model when the request leaves it empty
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Timeout      time.Duration `mapstructure:"timeout"`
	OpenAI       OpenAIConfig  `mapstructure:"openai"`
	Ollama       OllamaConfig  `mapstructure:"ollama"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// OllamaConfig holds self-hosted LLM settings.
type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"` // /api/generate or an OpenAI-compatible /chat/completions URL
	Model    string `mapstructure:"model"`    // overrides generator.model for this backend
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // overrides generator.model for this backend
	BaseURL string `mapstructure:"base_url"` // empty uses the public Gemini API
}

// LanguageConfig holds the default synthesis language.
type LanguageConfig struct {
	Default string `mapstructure:"default"`
}

// MediaConfig locates generated audio on disk and under the static mount.
type MediaConfig struct {
	Dir    string `mapstructure:"dir"`    // directory audio files are written to
	Mount  string `mapstructure:"mount"`  // URL prefix the directory is served under
	Prefix string `mapstructure:"prefix"` // filename prefix
}

// TTSConfig configures the speech synthesis backend.
type TTSConfig struct {
	Speed   float64        `mapstructure:"speed"` // speed multiplier passed to engines that honour it
	Local   LocalTTSConfig `mapstructure:"local"`
	Piper   PiperConfig    `mapstructure:"piper"`
	Network NetworkConfig  `mapstructure:"network"`
}

// LocalTTSConfig configures the on-device primary engine.
type LocalTTSConfig struct {
	Engine    string  `mapstructure:"engine"`     // "espeak", "piper" or "none"
	Binary    string  `mapstructure:"binary"`     // espeak binary override; empty searches espeak-ng then espeak
	Rate      int     `mapstructure:"rate"`       // words per minute
	Volume    float64 `mapstructure:"volume"`     // 0.0-1.0
	VoiceHint string  `mapstructure:"voice_hint"` // case-insensitive substring preferred in voice names
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string            `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voices   map[string]string `mapstructure:"voices"`   // ISO-639-1 language code -> Piper voice model name
}

// NetworkConfig configures the network fallback engine.
type NetworkConfig struct {
	Backend  string              `mapstructure:"backend"`  // "gtranslate", "openai" or "none"
	Endpoint string              `mapstructure:"endpoint"` // overrides the backend's default URL
	Timeout  time.Duration       `mapstructure:"timeout"`
	OpenAI   NetworkOpenAIConfig `mapstructure:"openai"`
}

// NetworkOpenAIConfig holds settings for the OpenAI speech fallback.
type NetworkOpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	Voice  string `mapstructure:"voice"`
}

// OpenerConfig selects how extracted URLs are opened.
type OpenerConfig struct {
	Backend string `mapstructure:"backend"` // "browser" or "log"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from .env, file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voxestate.yaml, ./configs/voxestate.yaml, /etc/voxestate/voxestate.yaml.
func Load(configFile string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not parse .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voxestate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voxestate")
	}

	// Environment variables: VOXESTATE_GENERATOR_BACKEND, VOXESTATE_MEDIA_DIR, etc.
	v.SetEnvPrefix("VOXESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Generator.OpenAI.APIKey = resolveEnvRef(cfg.Generator.OpenAI.APIKey)
	cfg.Generator.Gemini.APIKey = resolveEnvRef(cfg.Generator.Gemini.APIKey)
	cfg.TTS.Network.OpenAI.APIKey = resolveEnvRef(cfg.TTS.Network.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8000)
	v.SetDefault("transports.http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("generator.backend", "openai")
	v.SetDefault("generator.model", "gpt-3.5-turbo")
	v.SetDefault("generator.temperature", 0.7)
	v.SetDefault("generator.max_tokens", 1000)
	v.SetDefault("generator.system_prompt", DefaultSystemPrompt)
	v.SetDefault("generator.timeout", 120*time.Second)
	v.SetDefault("generator.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("generator.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.ollama.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("generator.ollama.model", "llama3")
	v.SetDefault("generator.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("generator.gemini.model", "gemini-2.5-flash")
	v.SetDefault("generator.gemini.base_url", "")
	v.SetDefault("language.default", "en")
	v.SetDefault("media.dir", "static/audio")
	v.SetDefault("media.mount", "/static/audio")
	v.SetDefault("media.prefix", "output")
	v.SetDefault("tts.speed", 1.3)
	v.SetDefault("tts.local.engine", "espeak")
	v.SetDefault("tts.local.binary", "")
	v.SetDefault("tts.local.rate", 150)
	v.SetDefault("tts.local.volume", 1.0)
	v.SetDefault("tts.local.voice_hint", "female")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.network.backend", "gtranslate")
	v.SetDefault("tts.network.endpoint", "")
	v.SetDefault("tts.network.timeout", 30*time.Second)
	v.SetDefault("tts.network.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("tts.network.openai.model", "tts-1")
	v.SetDefault("tts.network.openai.voice", "shimmer")
	v.SetDefault("opener.backend", "browser")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects settings that would only fail later, per request.
func (c *Config) Validate() error {
	switch c.Generator.Backend {
	case "openai", "ollama", "gemini":
	default:
		return fmt.Errorf("unknown generator backend %q", c.Generator.Backend)
	}
	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		return fmt.Errorf("generator.temperature %.2f out of range 0.0-2.0", c.Generator.Temperature)
	}
	if c.Generator.MaxTokens <= 0 {
		return fmt.Errorf("generator.max_tokens must be positive, got %d", c.Generator.MaxTokens)
	}
	switch c.Language.Default {
	case "en", "ar":
	default:
		return fmt.Errorf("language.default %q is not a supported language", c.Language.Default)
	}
	switch c.TTS.Local.Engine {
	case "espeak", "piper", "none":
	default:
		return fmt.Errorf("unknown tts.local.engine %q", c.TTS.Local.Engine)
	}
	switch c.TTS.Network.Backend {
	case "gtranslate", "openai", "none":
	default:
		return fmt.Errorf("unknown tts.network.backend %q", c.TTS.Network.Backend)
	}
	switch c.Opener.Backend {
	case "browser", "log":
	default:
		return fmt.Errorf("unknown opener.backend %q", c.Opener.Backend)
	}
	if !strings.HasPrefix(c.Media.Mount, "/") || strings.Trim(c.Media.Mount, "/") == "" {
		return fmt.Errorf("media.mount %q must start with / and name a directory", c.Media.Mount)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string so a missing credential stays detectable.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
