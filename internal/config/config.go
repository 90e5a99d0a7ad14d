package config

import (
	"os"
	"strconv"
	"time"

	"datasight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Upload UploadConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AIConfig holds settings for the remote answer service
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxBytes int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    envOr("PORT", "8000"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		},
	}

	timeoutSec, err := envInt("AI_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	config.AI.Timeout = time.Duration(timeoutSec) * time.Second

	config.AI.MaxTokens, err = envInt("AI_MAX_TOKENS", 1024)
	if err != nil {
		return nil, err
	}

	config.AI.Temperature, err = envFloat("AI_TEMPERATURE", 0.3)
	if err != nil {
		return nil, err
	}

	maxUploadMB, err := envInt("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}
	config.Upload.MaxBytes = int64(maxUploadMB) * 1024 * 1024

	return config, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.ConfigInvalid("invalid value for " + key + ": " + v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.ConfigInvalid("invalid value for " + key + ": " + v)
	}
	return f, nil
}
