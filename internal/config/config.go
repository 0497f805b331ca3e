// Package config loads the relay's runtime configuration from the
// environment, following the teacher's getEnv/getEnvAsInt/getEnvAsBool +
// godotenv pattern (trader-go/internal/config/config.go).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the relay needs to run.
type Config struct {
	// Ingress (EA-facing websocket listener)
	ListenAddr string

	// Redis (egress publisher backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Repository backend: "memory" or "sqlite"
	RepoBackend string
	SQLitePath  string

	// Liveness
	HeartbeatTimeout time.Duration
	SweepInterval    time.Duration

	// Publisher
	PublisherQueueCapacity int

	// UI channel
	SnapshotInterval time.Duration

	// Logging
	LogLevel  string
	LogPretty bool

	// Optional S3 archiver; Enabled false unless a bucket is configured.
	ArchiverEnabled  bool
	ArchiverBucket   string
	ArchiverSchedule string
}

// Load reads configuration from the environment, loading a .env file
// first if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("RELAY_LISTEN_ADDR", ":8765"),

		RedisAddr:     getEnv("RELAY_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("RELAY_REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("RELAY_REDIS_DB", 0),

		RepoBackend: getEnv("RELAY_REPO_BACKEND", "memory"),
		SQLitePath:  getEnv("RELAY_SQLITE_PATH", "./data/relay.db"),

		HeartbeatTimeout: getEnvAsDuration("RELAY_HEARTBEAT_TIMEOUT", 90*time.Second),
		SweepInterval:    getEnvAsDuration("RELAY_SWEEP_INTERVAL", 15*time.Second),

		PublisherQueueCapacity: getEnvAsInt("RELAY_PUBLISHER_QUEUE_CAPACITY", 256),

		SnapshotInterval: getEnvAsDuration("RELAY_SNAPSHOT_INTERVAL", 10*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),

		ArchiverEnabled:  getEnvAsBool("RELAY_ARCHIVER_ENABLED", false),
		ArchiverBucket:   getEnv("RELAY_ARCHIVER_BUCKET", ""),
		ArchiverSchedule: getEnv("RELAY_ARCHIVER_SCHEDULE", "0 */15 * * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints Load's defaults can't catch.
func (c *Config) Validate() error {
	if c.RepoBackend != "memory" && c.RepoBackend != "sqlite" {
		return fmt.Errorf("RELAY_REPO_BACKEND must be \"memory\" or \"sqlite\", got %q", c.RepoBackend)
	}
	if c.RepoBackend == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("RELAY_SQLITE_PATH is required when RELAY_REPO_BACKEND=sqlite")
	}
	if c.ArchiverEnabled && c.ArchiverBucket == "" {
		return fmt.Errorf("RELAY_ARCHIVER_BUCKET is required when RELAY_ARCHIVER_ENABLED=true")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
