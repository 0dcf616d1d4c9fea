// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the servers will bind to.
	ServerHost string
	// ServerPort is the port number the pseudonymization server will listen on.
	ServerPort int
	// RepersonServerPort is the port number the repersonalization server will listen on.
	RepersonServerPort int

	// RedisURL is the connection URL for the mapping store backend (redis:// or rediss://).
	RedisURL string
	// RedisPoolSize is the maximum number of socket connections in the Redis pool.
	RedisPoolSize int
	// RedisMinIdleConns is the minimum number of idle connections kept open.
	RedisMinIdleConns int
	// RedisDialTimeout is the timeout for establishing new Redis connections.
	RedisDialTimeout time.Duration
	// RedisReadTimeout is the timeout for Redis read operations.
	RedisReadTimeout time.Duration
	// RedisWriteTimeout is the timeout for Redis write operations.
	RedisWriteTimeout time.Duration

	// MappingTTL is the absolute expiry applied to every stored pseudonym mapping.
	MappingTTL time.Duration

	// KeyDirectory is the directory holding key metadata and secret files.
	KeyDirectory string
	// KMSKeyURI is the optional gocloud.dev secrets keeper URI used to wrap the
	// raw secret file at rest (e.g., "hashivault://keyname", "base64key://...").
	KMSKeyURI string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether per-IP rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:         env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:         env.GetInt("SERVER_PORT", 8080),
		RepersonServerPort: env.GetInt("REPERSON_SERVER_PORT", 8090),

		// Mapping store configuration
		RedisURL:          env.GetString("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize:     env.GetInt("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: env.GetInt("REDIS_MIN_IDLE_CONNS", 2),
		RedisDialTimeout:  env.GetDuration("REDIS_DIAL_TIMEOUT_SECONDS", 5, time.Second),
		RedisReadTimeout:  env.GetDuration("REDIS_READ_TIMEOUT_SECONDS", 3, time.Second),
		RedisWriteTimeout: env.GetDuration("REDIS_WRITE_TIMEOUT_SECONDS", 3, time.Second),
		MappingTTL:        env.GetDuration("MAPPING_TTL_HOURS", 24, time.Hour),

		// Key management
		KeyDirectory: env.GetString("KEY_DIRECTORY", ".keys"),
		KMSKeyURI:    env.GetString("KMS_KEY_URI", ""),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "pseudonymizer"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
