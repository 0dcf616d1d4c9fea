package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	detectionService "github.com/allisson/pseudonymizer/internal/detection/service"
	"github.com/allisson/pseudonymizer/internal/http"
	perturbationService "github.com/allisson/pseudonymizer/internal/perturbation/service"
	pseudonymHTTP "github.com/allisson/pseudonymizer/internal/pseudonym/http"
	pseudonymUseCase "github.com/allisson/pseudonymizer/internal/pseudonym/usecase"
	tokenizationService "github.com/allisson/pseudonymizer/internal/tokenization/service"
)

// Detector returns the PII detector.
func (c *Container) Detector() *detectionService.Detector {
	c.detectorInit.Do(func() {
		c.detector = detectionService.NewDetector()
	})
	return c.detector
}

// Tokenizer returns the deterministic tokenizer.
func (c *Container) Tokenizer() *tokenizationService.Tokenizer {
	c.tokenizerInit.Do(func() {
		c.tokenizer = tokenizationService.NewTokenizer()
	})
	return c.tokenizer
}

// Perturber returns the bounded value perturber.
func (c *Container) Perturber() *perturbationService.Perturber {
	c.perturberInit.Do(func() {
		c.perturber = perturbationService.NewPerturber(c.Logger())
	})
	return c.perturber
}

// PseudonymUseCase returns the pseudonymization use case.
func (c *Container) PseudonymUseCase() (pseudonymUseCase.PseudonymUseCase, error) {
	var err error
	c.pseudonymUseCaseInit.Do(func() {
		c.pseudonymUseCase, err = c.initPseudonymUseCase()
		if err != nil {
			c.initErrors["pseudonymUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pseudonymUseCase"]; exists {
		return nil, storedErr
	}
	return c.pseudonymUseCase, nil
}

// PseudonymHandler returns the pseudonymization HTTP handler.
func (c *Container) PseudonymHandler() (*pseudonymHTTP.PseudonymHandler, error) {
	var err error
	c.pseudonymHandlerInit.Do(func() {
		c.pseudonymHandler, err = c.initPseudonymHandler()
		if err != nil {
			c.initErrors["pseudonymHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pseudonymHandler"]; exists {
		return nil, storedErr
	}
	return c.pseudonymHandler, nil
}

// PseudonymServer returns the HTTP server for the pseudonymization API.
func (c *Container) PseudonymServer() (*http.Server, error) {
	var err error
	c.pseudonymServerInit.Do(func() {
		c.pseudonymServer, err = c.initPseudonymServer()
		if err != nil {
			c.initErrors["pseudonymServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pseudonymServer"]; exists {
		return nil, storedErr
	}
	return c.pseudonymServer, nil
}

// initPseudonymUseCase creates the pseudonymization use case with all its dependencies.
func (c *Container) initPseudonymUseCase() (pseudonymUseCase.PseudonymUseCase, error) {
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for pseudonym use case: %w", err)
	}

	store, err := c.MappingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping repository for pseudonym use case: %w", err)
	}

	baseUseCase := pseudonymUseCase.NewPseudonymUseCase(
		c.Detector(),
		c.Tokenizer(),
		c.Perturber(),
		keyManager,
		store,
		c.config.MappingTTL,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for pseudonym use case: %w", err)
		}
		return pseudonymUseCase.NewPseudonymUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initPseudonymHandler creates the pseudonymization HTTP handler.
func (c *Container) initPseudonymHandler() (*pseudonymHTTP.PseudonymHandler, error) {
	useCase, err := c.PseudonymUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get pseudonym use case for pseudonym handler: %w", err)
	}

	return pseudonymHTTP.NewPseudonymHandler(useCase, c.Logger()), nil
}

// initPseudonymServer creates the pseudonymization HTTP server with its routes.
func (c *Container) initPseudonymServer() (*http.Server, error) {
	handler, err := c.PseudonymHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get pseudonym handler for pseudonym server: %w", err)
	}

	// The readiness probe reports the Redis backend; in degraded mode the
	// server keeps serving from the in-memory fallback but reports not ready.
	var store http.HealthChecker
	if client, err := c.RedisClient(); err == nil {
		store = client
	}

	server := http.NewServer(store, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.config, func(router *gin.Engine) {
		v1 := router.Group("/v1")
		v1.POST("/pseudonymize", handler.PseudonymizeHandler)
		v1.POST("/pseudonymize/batch", handler.BatchPseudonymizeHandler)
		v1.DELETE("/mappings/:id", handler.DeleteMappingHandler)
		v1.GET("/store/stats", handler.StoreStatsHandler)
	})

	return server, nil
}
