// Package config provides environment-sourced configuration for the
// chapi backend.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default model and service settings.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGeminiSTTModel = "gemini-2.5-flash"
	DefaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"

	// DefaultSTTInstruction asks Gemini for a verbatim Spanish transcript.
	DefaultSTTInstruction = "Transcribe el audio exactamente en español, sin comentarios adicionales."
)

// Config contains all runtime settings for the chapi backend.
type Config struct {
	BindAddr string
	LogLevel string

	// Text chat (OpenAI-compatible API)
	OpenAIAPIKey     string
	OpenAIModel      string
	SystemPromptFile string

	// Gemini (chat, transcription, synthesis)
	GeminiAPIKey   string
	GeminiModel    string
	GeminiSTTModel string
	GeminiTTSModel string
	GeminiTTSVoice string
	STTInstruction string
}

// Load reads environment variables and applies safe defaults.
// API keys are not required here; provider constructors fail when a
// key is missing, before any external call is made.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("CHAPI_BIND_ADDR", ":8080"),
		LogLevel:         envOrDefault("CHAPI_LOG_LEVEL", "info"),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:      envOrDefault("OPENAI_MODEL", DefaultOpenAIModel),
		SystemPromptFile: envOrDefault("OPENAI_SYSTEM_PROMPT_FILE", "prompts/system_prompt.txt"),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:      envOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		GeminiSTTModel:   envOrDefault("GEMINI_STT_MODEL", DefaultGeminiSTTModel),
		GeminiTTSModel:   envOrDefault("GEMINI_TTS_MODEL", DefaultGeminiTTSModel),
		GeminiTTSVoice:   strings.TrimSpace(os.Getenv("GEMINI_TTS_VOICE")),
		STTInstruction:   envOrDefault("GEMINI_STT_PROMPT", DefaultSTTInstruction),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("CHAPI_LOG_LEVEL: unknown level %q", cfg.LogLevel)
	}

	return cfg, nil
}

// SystemPrompt returns the system prompt file contents, or empty if the
// file is missing or blank. Read once at startup and passed to the
// pipeline.
func (c Config) SystemPrompt() string {
	data, err := os.ReadFile(c.SystemPromptFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// EnsureGoogleCredentialsFile supports deployments that can only store
// the Google service-account JSON as an environment string (raw or
// base64). It materializes GOOGLE_APPLICATION_CREDENTIALS_JSON into a
// runtime file and points GOOGLE_APPLICATION_CREDENTIALS at it, unless
// a credentials path is already set.
func EnsureGoogleCredentialsFile(runtimeDir string) error {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return nil
	}
	raw := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if raw == "" {
		return nil
	}

	decoded := raw
	if !strings.HasPrefix(raw, "{") {
		if b, err := base64.StdEncoding.DecodeString(raw); err == nil {
			decoded = string(b)
		}
	}

	if !json.Valid([]byte(decoded)) {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_JSON does not contain valid JSON")
	}

	if err := os.MkdirAll(runtimeDir, 0o700); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}
	target := filepath.Join(runtimeDir, "google-credentials.json")
	if err := os.WriteFile(target, []byte(decoded), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", target)
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
