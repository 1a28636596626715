package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/spaceweather"
)

// Config holds the settings for the CLI and exporter, populated from
// environment variables and an optional .env file.
type Config struct {
	APIKey         string
	BaseURL        string
	KIndexLocation string
	PollInterval   time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka bulletin publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Circuit breaker around the SWS source.
	BreakerFailures int
	BreakerTimeout  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := parsePositiveDuration("BREAKER_TIMEOUT", "1m")
	if err != nil {
		return nil, err
	}

	breakerFailures, err := parseBreakerFailures()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:          os.Getenv("SWS_API_KEY"),
		BaseURL:         sharedcfg.EnvOrDefault("SWS_BASE_URL", spaceweather.DefaultBaseURL),
		KIndexLocation:  sharedcfg.EnvOrDefault("KINDEX_LOCATION", spaceweather.AustralianRegion),
		PollInterval:    pollInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "space-weather-bulletins"),
		BreakerFailures: breakerFailures,
		BreakerTimeout:  breakerTimeout,
	}

	if cfg.APIKey == "" {
		return nil, errors.New("SWS_API_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBreakerFailures() (int, error) {
	s := os.Getenv("BREAKER_FAILURES")
	if s == "" {
		return 3, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid BREAKER_FAILURES")
	}
	return n, nil
}
