package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	LogFormat             string
	AssistantBaseURL      string
	AssistantAPIKey       string
	AssistantTimeout      time.Duration
	AssistantMaxRetries   int
	ChatWorkerCount       int
	ChatQueueSize         int
	AIRatePerMinute       int
	AIRateBurst           int
	StudySessionTTL       time.Duration
	DefaultLocationRadius float64
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:studyflash.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		LogFormat:             envOr("LOG_FORMAT", "text"),
		AssistantBaseURL:      envOr("ASSISTANT_BASE_URL", "http://localhost:8081"),
		AssistantAPIKey:       os.Getenv("ASSISTANT_API_KEY"),
		AssistantTimeout:      time.Duration(envIntOr("ASSISTANT_TIMEOUT_SECONDS", 30)) * time.Second,
		AssistantMaxRetries:   envIntOr("ASSISTANT_MAX_RETRIES", 2),
		ChatWorkerCount:       envIntOr("CHAT_WORKER_COUNT", 2),
		ChatQueueSize:         envIntOr("CHAT_QUEUE_SIZE", 32),
		AIRatePerMinute:       envIntOr("AI_RATE_PER_MINUTE", 30),
		AIRateBurst:           envIntOr("AI_RATE_BURST", 5),
		StudySessionTTL:       time.Duration(envIntOr("STUDY_SESSION_TTL_MINUTES", 120)) * time.Minute,
		DefaultLocationRadius: envFloatOr("DEFAULT_LOCATION_RADIUS", 100),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	if !strings.HasPrefix(c.AssistantBaseURL, "http://") && !strings.HasPrefix(c.AssistantBaseURL, "https://") {
		errs = append(errs, fmt.Errorf("ASSISTANT_BASE_URL %q must be an http(s) URL", c.AssistantBaseURL))
	}
	if c.AssistantTimeout <= 0 {
		errs = append(errs, errors.New("ASSISTANT_TIMEOUT_SECONDS must be positive"))
	}
	if c.AssistantMaxRetries < 0 || c.AssistantMaxRetries > 10 {
		errs = append(errs, errors.New("ASSISTANT_MAX_RETRIES must be between 0 and 10"))
	}
	if c.ChatWorkerCount < 1 {
		errs = append(errs, errors.New("CHAT_WORKER_COUNT must be at least 1"))
	}
	if c.ChatQueueSize < 1 {
		errs = append(errs, errors.New("CHAT_QUEUE_SIZE must be at least 1"))
	}
	if c.AIRatePerMinute < 1 {
		errs = append(errs, errors.New("AI_RATE_PER_MINUTE must be at least 1"))
	}
	if c.AIRateBurst < 1 {
		errs = append(errs, errors.New("AI_RATE_BURST must be at least 1"))
	}
	if c.StudySessionTTL <= 0 {
		errs = append(errs, errors.New("STUDY_SESSION_TTL_MINUTES must be positive"))
	}
	if c.DefaultLocationRadius <= 0 {
		errs = append(errs, errors.New("DEFAULT_LOCATION_RADIUS must be positive"))
	}
	return errors.Join(errs...)
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

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}
