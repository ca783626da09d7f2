// Package config loads runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the game binaries read from the environment.
type Config struct {
	Model     string // Ollama model identifier used for companion queries
	OllamaURL string // Base URL of the local Ollama endpoint
	DBPath    string // Lineage archive path
	Seed      int64  // World generation seed (0 = random)
	LogLevel  slog.Level
}

// Load reads configuration with sensible defaults for a local setup.
func Load() *Config {
	return &Config{
		Model:     getEnv("DEVSCAPE_MODEL", "llama2:latest"),
		OllamaURL: getEnv("DEVSCAPE_OLLAMA_URL", "http://localhost:11434"),
		DBPath:    getEnv("DEVSCAPE_DB", "lineage.db"),
		Seed:      getEnvInt64("DEVSCAPE_SEED", 0),
		LogLevel:  parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
