package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need from the environment.
type Config struct {
	// GeminiAPIKey authenticates every call to the Gemini API.
	GeminiAPIKey string

	// Model names per concern; all default to sensible Gemini choices.
	ExtractionModel string
	ChatModel       string
	SpeechModel     string

	// Voice is the prebuilt voice used for speech synthesis.
	Voice string

	// Port is the HTTP port for cmd/api.
	Port string

	// GoogleCredentials optionally points at a service-account file for
	// fetching statements from GCS. Empty means default credentials.
	GoogleCredentials string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ExtractionModel:   envOr("EXTRACTION_MODEL", "gemini-2.5-flash"),
		ChatModel:         envOr("CHAT_MODEL", "gemini-2.5-flash"),
		SpeechModel:       envOr("SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
		Voice:             envOr("SPEECH_VOICE", "Kore"),
		Port:              envOr("PORT", "8080"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("config: GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
