// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/pseudonymizer/internal/config"
	detectionService "github.com/allisson/pseudonymizer/internal/detection/service"
	"github.com/allisson/pseudonymizer/internal/http"
	keysRepository "github.com/allisson/pseudonymizer/internal/keys/repository"
	keysService "github.com/allisson/pseudonymizer/internal/keys/service"
	mappingRepository "github.com/allisson/pseudonymizer/internal/mapping/repository"
	"github.com/allisson/pseudonymizer/internal/metrics"
	perturbationService "github.com/allisson/pseudonymizer/internal/perturbation/service"
	pseudonymHTTP "github.com/allisson/pseudonymizer/internal/pseudonym/http"
	pseudonymUseCase "github.com/allisson/pseudonymizer/internal/pseudonym/usecase"
	"github.com/allisson/pseudonymizer/internal/redis"
	repersonHTTP "github.com/allisson/pseudonymizer/internal/reperson/http"
	repersonUseCase "github.com/allisson/pseudonymizer/internal/reperson/usecase"
	tokenizationService "github.com/allisson/pseudonymizer/internal/tokenization/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	redisClient *redis.Client

	// Mapping store
	mappingRepository mappingRepository.MappingRepository

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	metricsServer   *http.MetricsServer

	// Keys
	kmsService         keysService.KMSService
	keyRepository      *keysRepository.FileRepository
	keyManager         *keysService.KeyManager
	readOnlyKeyManager *keysService.KeyManager

	// Pseudonymization
	detector         *detectionService.Detector
	tokenizer        *tokenizationService.Tokenizer
	perturber        *perturbationService.Perturber
	pseudonymUseCase pseudonymUseCase.PseudonymUseCase
	pseudonymHandler *pseudonymHTTP.PseudonymHandler
	pseudonymServer  *http.Server

	// Repersonalization
	repersonUseCase repersonUseCase.RepersonUseCase
	repersonHandler *repersonHTTP.RepersonHandler
	repersonServer  *http.Server

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	redisClientInit       sync.Once
	mappingRepositoryInit sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error

	// Keys (see di_keys.go)
	kmsServiceInit         sync.Once
	keyRepositoryInit      sync.Once
	keyManagerInit         sync.Once
	readOnlyKeyManagerInit sync.Once

	// Pseudonymization (see di_pseudonym.go)
	detectorInit         sync.Once
	tokenizerInit        sync.Once
	perturberInit        sync.Once
	pseudonymUseCaseInit sync.Once
	pseudonymHandlerInit sync.Once
	pseudonymServerInit  sync.Once

	// Repersonalization (see di_reperson.go)
	repersonUseCaseInit sync.Once
	repersonHandlerInit sync.Once
	repersonServerInit  sync.Once
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// RedisClient returns the Redis connection used by the mapping store.
func (c *Container) RedisClient() (*redis.Client, error) {
	var err error
	c.redisClientInit.Do(func() {
		c.redisClient, err = c.initRedisClient()
		if err != nil {
			c.initErrors["redisClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["redisClient"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// MappingRepository returns the mapping repository instance.
//
// When Redis is reachable the repository is a failover pair: Redis as primary
// with an in-memory fallback for outages. When Redis cannot be reached at
// startup the container degrades to the in-memory repository alone, so the
// service stays available without durability across restarts.
func (c *Container) MappingRepository() (mappingRepository.MappingRepository, error) {
	var err error
	c.mappingRepositoryInit.Do(func() {
		c.mappingRepository, err = c.initMappingRepository()
		if err != nil {
			c.initErrors["mappingRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["mappingRepository"]; exists {
		return nil, storedErr
	}
	return c.mappingRepository, nil
}

// MetricsProvider returns the metrics provider instance.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Returns a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MetricsServer returns the metrics HTTP server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.pseudonymServer != nil {
		if err := c.pseudonymServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("pseudonym server shutdown: %w", err))
		}
	}
	if c.repersonServer != nil {
		if err := c.repersonServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("reperson server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close Redis connection if initialized
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initRedisClient creates the Redis connection for the mapping store.
func (c *Container) initRedisClient() (*redis.Client, error) {
	client, err := redis.Connect(redis.Config{
		URL:          c.config.RedisURL,
		PoolSize:     c.config.RedisPoolSize,
		MinIdleConns: c.config.RedisMinIdleConns,
		DialTimeout:  c.config.RedisDialTimeout,
		ReadTimeout:  c.config.RedisReadTimeout,
		WriteTimeout: c.config.RedisWriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// initMappingRepository creates the mapping repository, degrading to the
// in-memory backend when Redis is unreachable.
func (c *Container) initMappingRepository() (mappingRepository.MappingRepository, error) {
	logger := c.Logger()
	fallback := mappingRepository.NewMemoryMappingRepository(c.config.MappingTTL)

	client, err := c.RedisClient()
	if err != nil {
		logger.Warn("redis unreachable, mapping store running in-memory only",
			slog.Any("error", err))
		return fallback, nil
	}

	primary := mappingRepository.NewRedisMappingRepository(client, c.config.MappingTTL)
	return mappingRepository.NewFailoverMappingRepository(primary, fallback, logger), nil
}

// initMetricsProvider creates the metrics provider.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initMetricsServer creates the metrics HTTP server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
