package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config holds all process-wide configuration, read once at startup.
type Config struct {
	Port            int
	APIKey          string
	APIKeyParam     string
	BaseURL         string
	ModerationModel string
	ImageModel      string
	ImageSize       string
	Timeout         time.Duration
	StaticDir       string
	PlaceholderURL  string
	Debug           bool
}

var ErrMissingAPIKey = errors.New("no API key configured: set OPENAI_API_KEY or OPENAI_API_KEY_PARAM")

func Load() (*Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            intFromEnv("PORT", 3000),
		APIKey:          os.Getenv("OPENAI_API_KEY"),
		APIKeyParam:     os.Getenv("OPENAI_API_KEY_PARAM"),
		BaseURL:         fromEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		ModerationModel: fromEnv("MODERATION_MODEL", "gpt-4o-mini"),
		ImageModel:      fromEnv("IMAGE_MODEL", "dall-e-3"),
		ImageSize:       fromEnv("IMAGE_SIZE", "1024x1024"),
		Timeout:         time.Duration(intFromEnv("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		StaticDir:       fromEnv("STATIC_DIR", "static"),
		PlaceholderURL:  fromEnv("PLACEHOLDER_URL", "/static/placeholder.png"),
		Debug:           os.Getenv("DEBUG") != "",
	}

	if cfg.APIKey == "" && cfg.APIKeyParam == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

func fromEnv(key, fallback string) string {
	return lo.Ternary(os.Getenv(key) != "", os.Getenv(key), fallback)
}

func intFromEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	return lo.Ternary(err == nil, v, fallback)
}
