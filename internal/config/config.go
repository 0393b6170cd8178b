// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendGCS      = "gcs"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres, BackendGCS}

type Config struct {
	// HTTP server
	Port string

	// Logging
	LogLevel string
	LogJSON  bool

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Persistence
	StoreBackend string
	StoreKey     string
	SQLiteDBPath string
	DatabaseURL  string
	GCSBucket    string

	// Statement archive and exports
	ArchiveBucket   string
	BigQueryProject string
	BigQueryDataset string
	NotionToken     string
	NotionDatabase  string

	// Events
	AMQPURL      string
	AMQPExchange string

	// Auth
	AuthUsername     string
	AuthPasswordHash string
	JWTSecret        string
	TokenTTL         time.Duration

	// Workers and caches
	WorkerCount   int
	QueueSize     int
	OfferCacheTTL time.Duration
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		StoreBackend: getEnv("STORE_BACKEND", BackendSQLite),
		StoreKey:     getEnv("STORE_KEY", "finsight_data_v2"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		GCSBucket:    getEnv("GCS_BUCKET", ""),

		ArchiveBucket:   getEnv("ARCHIVE_BUCKET", ""),
		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "finsight"),
		NotionToken:     getEnv("NOTION_TOKEN", ""),
		NotionDatabase:  getEnv("NOTION_DATABASE_ID", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),

		AuthUsername:     getEnv("AUTH_USERNAME", ""),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 24*time.Hour),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 100),
		OfferCacheTTL: getEnvDuration("OFFER_CACHE_TTL", 30*time.Minute),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
			errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
		}
	}

	if !slices.Contains(validBackends, c.StoreBackend) {
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}
	if c.StoreKey == "" {
		errs = append(errs, "store key cannot be empty")
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using postgres backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			errs = append(errs, "GCS_BUCKET is required when using gcs backend")
		}
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if (c.NotionToken == "") != (c.NotionDatabase == "") {
		errs = append(errs, "NOTION_TOKEN and NOTION_DATABASE_ID must be set together")
	}
	if c.BigQueryProject != "" && c.BigQueryDataset == "" {
		errs = append(errs, "BIGQUERY_DATASET cannot be empty when BIGQUERY_PROJECT is set")
	}

	if c.WorkerCount < 1 || c.WorkerCount > 64 {
		errs = append(errs, fmt.Sprintf("invalid worker count %d: must be between 1 and 64", c.WorkerCount))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid queue size %d: must be at least 1", c.QueueSize))
	}
	if c.OfferCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid offer cache TTL %v: must be at least 1 second", c.OfferCacheTTL))
	}
	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateServer adds the checks only the HTTP API needs: login
// credentials and a signing secret.
func (c *Config) ValidateServer() error {
	var errs []string
	if err := c.Validate(); err != nil {
		errs = append(errs, strings.TrimPrefix(err.Error(), "configuration validation failed:\n- "))
	}
	if c.AuthUsername == "" || c.AuthPasswordHash == "" {
		errs = append(errs, "AUTH_USERNAME and AUTH_PASSWORD_HASH are required for the API server")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 characters")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// AnalysisEnabled reports whether a Gemini key is configured.
func (c *Config) AnalysisEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
