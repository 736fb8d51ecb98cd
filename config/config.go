// ABOUTME: This file implements configuration management with environment variable support
// ABOUTME: Provides validation and defaults for all pipeline knobs
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"report-pipeline/domain"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Cache    CacheConfig    `json:"cache"`
	Editor   EditorConfig   `json:"editor"`
	Newswire NewswireConfig `json:"newswire"`
	Pipeline PipelineConfig `json:"pipeline"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"9300"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	URL string `json:"url" env:"DATABASE_URL"`
}

type CacheConfig struct {
	// Addr is the redis address for the seen-source cache. Empty disables the
	// cache; ingestion then reads seen sources from the store every run.
	Addr string        `json:"addr" env:"CACHE_ADDR"`
	TTL  time.Duration `json:"ttl" env:"CACHE_TTL" default:"24h"`
}

// EditorConfig points at the editorial decision service that judges
// ingestion, classification, and composition.
type EditorConfig struct {
	Host         string        `json:"host" env:"EDITOR_HOST" default:"http://editor:11434"`
	IngestPath   string        `json:"ingest_path" env:"EDITOR_INGEST_PATH" default:"/v1/decide/ingest"`
	ClassifyPath string        `json:"classify_path" env:"EDITOR_CLASSIFY_PATH" default:"/v1/decide/classify"`
	ComposePath  string        `json:"compose_path" env:"EDITOR_COMPOSE_PATH" default:"/v1/decide/compose"`
	Model        string        `json:"model" env:"EDITOR_MODEL" default:"gemma3:4b"`
	Timeout      time.Duration `json:"timeout" env:"EDITOR_TIMEOUT" default:"240s"`
}

type NewswireConfig struct {
	Host    string        `json:"host" env:"NEWSWIRE_HOST" default:"http://newswire:8080"`
	Timeout time.Duration `json:"timeout" env:"NEWSWIRE_TIMEOUT" default:"30s"`
}

type PipelineConfig struct {
	Interval           time.Duration   `json:"interval" env:"PIPELINE_INTERVAL" default:"2h"`
	DailyTarget        int             `json:"daily_target" env:"PIPELINE_DAILY_TARGET" default:"14"`
	ClassifyBatchSize  int             `json:"classify_batch_size" env:"PIPELINE_CLASSIFY_BATCH_SIZE" default:"50"`
	ComposeBatchSize   int             `json:"compose_batch_size" env:"PIPELINE_COMPOSE_BATCH_SIZE" default:"20"`
	Locales            []domain.Locale `json:"locales"`
	RunImmediately     bool            `json:"run_immediately" env:"PIPELINE_RUN_IMMEDIATELY" default:"false"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	var err error

	if config.Server.Port, err = intEnv("SERVER_PORT", 9300); err != nil {
		return err
	}

	if config.Server.ShutdownTimeout, err = durationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return err
	}

	config.Database.URL = os.Getenv("DATABASE_URL")

	config.Cache.Addr = os.Getenv("CACHE_ADDR")

	if config.Cache.TTL, err = durationEnv("CACHE_TTL", 24*time.Hour); err != nil {
		return err
	}

	config.Editor.Host = stringEnv("EDITOR_HOST", "http://editor:11434")
	config.Editor.IngestPath = stringEnv("EDITOR_INGEST_PATH", "/v1/decide/ingest")
	config.Editor.ClassifyPath = stringEnv("EDITOR_CLASSIFY_PATH", "/v1/decide/classify")
	config.Editor.ComposePath = stringEnv("EDITOR_COMPOSE_PATH", "/v1/decide/compose")
	config.Editor.Model = stringEnv("EDITOR_MODEL", "gemma3:4b")

	if config.Editor.Timeout, err = durationEnv("EDITOR_TIMEOUT", 240*time.Second); err != nil {
		return err
	}

	config.Newswire.Host = stringEnv("NEWSWIRE_HOST", "http://newswire:8080")

	if config.Newswire.Timeout, err = durationEnv("NEWSWIRE_TIMEOUT", 30*time.Second); err != nil {
		return err
	}

	if config.Pipeline.Interval, err = durationEnv("PIPELINE_INTERVAL", 2*time.Hour); err != nil {
		return err
	}

	if config.Pipeline.DailyTarget, err = intEnv("PIPELINE_DAILY_TARGET", 14); err != nil {
		return err
	}

	if config.Pipeline.ClassifyBatchSize, err = intEnv("PIPELINE_CLASSIFY_BATCH_SIZE", 50); err != nil {
		return err
	}

	if config.Pipeline.ComposeBatchSize, err = intEnv("PIPELINE_COMPOSE_BATCH_SIZE", 20); err != nil {
		return err
	}

	if config.Pipeline.RunImmediately, err = boolEnv("PIPELINE_RUN_IMMEDIATELY", false); err != nil {
		return err
	}

	if config.Pipeline.Locales, err = localesEnv("PIPELINE_LOCALES", "en-US"); err != nil {
		return err
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if config.Editor.Host == "" {
		return fmt.Errorf("editor host cannot be empty")
	}

	if config.Editor.Timeout <= 0 {
		return fmt.Errorf("editor timeout must be positive: %v", config.Editor.Timeout)
	}

	if config.Newswire.Host == "" {
		return fmt.Errorf("newswire host cannot be empty")
	}

	if config.Pipeline.Interval <= 0 {
		return fmt.Errorf("pipeline interval must be positive: %v", config.Pipeline.Interval)
	}

	if config.Pipeline.DailyTarget <= 0 {
		return fmt.Errorf("daily target must be positive: %d", config.Pipeline.DailyTarget)
	}

	if config.Pipeline.ClassifyBatchSize <= 0 {
		return fmt.Errorf("classify batch size must be positive: %d", config.Pipeline.ClassifyBatchSize)
	}

	if config.Pipeline.ComposeBatchSize <= 0 {
		return fmt.Errorf("compose batch size must be positive: %d", config.Pipeline.ComposeBatchSize)
	}

	if len(config.Pipeline.Locales) == 0 {
		return fmt.Errorf("at least one pipeline locale is required")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive: %v", config.Cache.TTL)
	}

	return nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, v)
	}

	return i, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, v)
	}

	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, v)
	}

	return d, nil
}

func localesEnv(key, fallback string) ([]domain.Locale, error) {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}

	tags := strings.Split(v, ",")
	locales := make([]domain.Locale, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		locale, err := domain.ParseLocale(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}

		locales = append(locales, locale)
	}

	return locales, nil
}
