package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	GenerationHour     int
	GenerationQueueLen int
	CloudAPIKey        string
	CloudURL           string
	CloudModel         string
	LocalURL           string
	LocalModel         string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "dailylesson.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		GenerationHour:     envIntOr("GENERATION_HOUR", 8),
		GenerationQueueLen: envIntOr("GENERATION_QUEUE_SIZE", 4),
		CloudAPIKey:        envOr("CLOUD_API_KEY", ""),
		CloudURL:           envOr("CLOUD_API_URL", ""),
		CloudModel:         envOr("CLOUD_MODEL", ""),
		LocalURL:           envOr("LOCAL_LLM_URL", ""),
		LocalModel:         envOr("LOCAL_LLM_MODEL", ""),
	}
}

// Validate checks the loaded configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.GenerationHour < 0 || c.GenerationHour > 23 {
		problems = append(problems, fmt.Sprintf("GENERATION_HOUR must be between 0 and 23, got %d", c.GenerationHour))
	}
	if c.GenerationQueueLen < 1 {
		problems = append(problems, fmt.Sprintf("GENERATION_QUEUE_SIZE must be at least 1, got %d", c.GenerationQueueLen))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
