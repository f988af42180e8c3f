package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Feature generation
	FeatureSet     string
	OneHot         bool
	Difference     bool
	DivideTurns    bool
	ExtractWorkers int
	StrictRoster   bool
	CacheTTL       time.Duration

	// Tracing
	OTelEnabled bool
}

// Load reads the API configuration. The three database URLs are required.
func Load() (*Config, error) {
	cfg := LoadFeatures()

	required := []struct {
		key string
		dst *string
	}{
		{"POSTGRES_URL", &cfg.PostgresURL},
		{"CLICKHOUSE_URL", &cfg.ClickHouseURL},
		{"REDIS_URL", &cfg.RedisURL},
	}
	for _, r := range required {
		v, err := getEnvRequired(r.key)
		if err != nil {
			return nil, err
		}
		*r.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the feature engine cannot run with.
func (c *Config) Validate() error {
	switch c.FeatureSet {
	case "tree", "linear":
	default:
		return fmt.Errorf("FEATURE_SET must be tree or linear, got %q", c.FeatureSet)
	}
	if c.ExtractWorkers < 1 {
		return fmt.Errorf("EXTRACT_WORKERS must be positive, got %d", c.ExtractWorkers)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// LoadFeatures loads everything but the database URLs, which stay
// optional. Batch runs use it to work without any backing store.
func LoadFeatures() *Config {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		PostgresURL:   os.Getenv("POSTGRES_URL"),
		ClickHouseURL: os.Getenv("CLICKHOUSE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),

		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		FeatureSet:     getEnv("FEATURE_SET", "tree"),
		OneHot:         getEnvBool("FEATURE_ONE_HOT", false),
		Difference:     getEnvBool("FEATURE_DIFFERENCE", true),
		DivideTurns:    getEnvBool("FEATURE_DIVIDE_TURNS", false),
		ExtractWorkers: getEnvInt("EXTRACT_WORKERS", 4),
		StrictRoster:   getEnvBool("STRICT_ROSTER", false),
		CacheTTL:       getEnvDuration("CACHE_TTL", 24*time.Hour),

		OTelEnabled: getEnvBool("OTEL_ENABLED", false),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
