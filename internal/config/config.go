// Package config centralises configuration parsing for the fitsocial services.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config captures runtime configuration values shared by all binaries.
type Config struct {
	HTTPAddress    string `toml:"http_address"`
	MetricsAddress string `toml:"metrics_address"`

	// storage; an empty PostgresURL selects the in-memory store
	PostgresURL      string `toml:"postgres_url"`
	PostgresMaxConns int32  `toml:"postgres_max_conns"`

	// kafka; no brokers means no outbox dispatch and log-only email
	KafkaBrokers       []string      `toml:"kafka_brokers"`
	ConsumerGroupID    string        `toml:"consumer_group_id"`
	ConsumerTopics     []string      `toml:"consumer_topics"`
	EmailTopic         string        `toml:"email_topic"`
	OutboxPollInterval time.Duration `toml:"outbox_poll_interval"`
	OutboxBatchSize    int           `toml:"outbox_batch_size"`
	DLQPollInterval    time.Duration `toml:"dlq_poll_interval"` // Interval between DLQ polling iterations.
	DLQMaxRetries      int           `toml:"dlq_max_retries"`   // Maximum number of DLQ retry attempts before quarantine.
	DLQBaseDelay       time.Duration `toml:"dlq_base_delay"`    // Base delay used for exponential backoff.

	JWTSecret string `toml:"jwt_secret"`
	JWTIssuer string `toml:"jwt_issuer"`

	// redis backs the searchUser rate limit; empty disables it
	RedisAddr          string        `toml:"redis_addr"`
	RedisPassword      string        `toml:"redis_password"`
	RedisDB            int           `toml:"redis_db"`
	SearchRatePerMin   int           `toml:"search_rate_per_min"`
	ProfileCacheSizeMB int           `toml:"profile_cache_size_mb"`
	ProfileCacheTTL    time.Duration `toml:"profile_cache_ttl"`

	CleanupInterval  time.Duration `toml:"cleanup_interval"`
	GoalSyncInterval time.Duration `toml:"goal_sync_interval"`

	LogLevel       string `toml:"log_level"`
	LogFile        string `toml:"log_file"`
	LogToStdout    bool   `toml:"log_to_stdout"`
	LogFormatJSON  bool   `toml:"log_format_json"`
	TracingEnabled bool   `toml:"tracing_enabled"`
}

// Defaults returns the configuration used for local development.
func Defaults() Config {
	return Config{
		HTTPAddress:        ":8080",
		MetricsAddress:     ":9100",
		PostgresMaxConns:   10,
		ConsumerGroupID:    "fitsocial-goalsync",
		ConsumerTopics:     []string{"fitsocial.workouts", "fitsocial.meals"},
		EmailTopic:         "fitsocial.email",
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    25,
		DLQPollInterval:    30 * time.Second,
		DLQMaxRetries:      5,
		DLQBaseDelay:       time.Minute,
		JWTSecret:          "dev-secret-change-me",
		JWTIssuer:          "fitsocial.identity",
		SearchRatePerMin:   30,
		ProfileCacheSizeMB: 8,
		ProfileCacheTTL:    5 * time.Minute,
		CleanupInterval:    15 * time.Minute,
		GoalSyncInterval:   time.Hour,
		LogLevel:           "info",
		LogToStdout:        true,
	}
}

// Load layers defaults, the optional TOML file named by CONFIG_FILE and environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the binaries cannot run with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("jwt secret is required")
	case c.OutboxBatchSize <= 0:
		return fmt.Errorf("outbox batch size must be positive, got %d", c.OutboxBatchSize)
	case c.CleanupInterval <= 0 || c.GoalSyncInterval <= 0:
		return fmt.Errorf("scheduler intervals must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddress = getEnv("HTTP_ADDRESS", cfg.HTTPAddress)
	cfg.MetricsAddress = getEnv("METRICS_ADDRESS", cfg.MetricsAddress)
	cfg.PostgresURL = getEnv("POSTGRES_URL", cfg.PostgresURL)
	cfg.PostgresMaxConns = int32(getIntEnv("POSTGRES_MAX_CONNS", int(cfg.PostgresMaxConns)))
	if brokers, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	if topics, ok := os.LookupEnv("CONSUMER_TOPICS"); ok && topics != "" {
		cfg.ConsumerTopics = splitAndTrim(topics)
	}
	cfg.ConsumerGroupID = getEnv("CONSUMER_GROUP_ID", cfg.ConsumerGroupID)
	cfg.EmailTopic = getEnv("EMAIL_TOPIC", cfg.EmailTopic)
	cfg.OutboxPollInterval = getDurationEnv("OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = getIntEnv("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.DLQPollInterval = getDurationEnv("DLQ_POLL_INTERVAL", cfg.DLQPollInterval)
	cfg.DLQMaxRetries = getIntEnv("DLQ_MAX_RETRIES", cfg.DLQMaxRetries)
	cfg.DLQBaseDelay = getDurationEnv("DLQ_BASE_DELAY", cfg.DLQBaseDelay)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getIntEnv("REDIS_DB", cfg.RedisDB)
	cfg.SearchRatePerMin = getIntEnv("SEARCH_RATE_PER_MIN", cfg.SearchRatePerMin)
	cfg.ProfileCacheSizeMB = getIntEnv("PROFILE_CACHE_SIZE_MB", cfg.ProfileCacheSizeMB)
	cfg.ProfileCacheTTL = getDurationEnv("PROFILE_CACHE_TTL", cfg.ProfileCacheTTL)
	cfg.CleanupInterval = getDurationEnv("CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.GoalSyncInterval = getDurationEnv("GOAL_SYNC_INTERVAL", cfg.GoalSyncInterval)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogToStdout = getBoolEnv("LOG_TO_STDOUT", cfg.LogToStdout)
	cfg.LogFormatJSON = getBoolEnv("LOG_FORMAT_JSON", cfg.LogFormatJSON)
	cfg.TracingEnabled = getBoolEnv("TRACING_ENABLED", cfg.TracingEnabled)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
