package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/allisson/pseudonymizer/internal/http"
	repersonHTTP "github.com/allisson/pseudonymizer/internal/reperson/http"
	repersonUseCase "github.com/allisson/pseudonymizer/internal/reperson/usecase"
)

// RepersonUseCase returns the repersonalization use case.
func (c *Container) RepersonUseCase() (repersonUseCase.RepersonUseCase, error) {
	var err error
	c.repersonUseCaseInit.Do(func() {
		c.repersonUseCase, err = c.initRepersonUseCase()
		if err != nil {
			c.initErrors["repersonUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repersonUseCase"]; exists {
		return nil, storedErr
	}
	return c.repersonUseCase, nil
}

// RepersonHandler returns the repersonalization HTTP handler.
func (c *Container) RepersonHandler() (*repersonHTTP.RepersonHandler, error) {
	var err error
	c.repersonHandlerInit.Do(func() {
		c.repersonHandler, err = c.initRepersonHandler()
		if err != nil {
			c.initErrors["repersonHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repersonHandler"]; exists {
		return nil, storedErr
	}
	return c.repersonHandler, nil
}

// RepersonServer returns the HTTP server for the repersonalization API.
func (c *Container) RepersonServer() (*http.Server, error) {
	var err error
	c.repersonServerInit.Do(func() {
		c.repersonServer, err = c.initRepersonServer()
		if err != nil {
			c.initErrors["repersonServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repersonServer"]; exists {
		return nil, storedErr
	}
	return c.repersonServer, nil
}

// initRepersonUseCase creates the repersonalization use case with all its dependencies.
func (c *Container) initRepersonUseCase() (repersonUseCase.RepersonUseCase, error) {
	store, err := c.MappingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping repository for reperson use case: %w", err)
	}

	baseUseCase := repersonUseCase.NewRepersonUseCase(store, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for reperson use case: %w", err)
		}
		return repersonUseCase.NewRepersonUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRepersonHandler creates the repersonalization HTTP handler.
func (c *Container) initRepersonHandler() (*repersonHTTP.RepersonHandler, error) {
	useCase, err := c.RepersonUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reperson use case for reperson handler: %w", err)
	}

	return repersonHTTP.NewRepersonHandler(useCase, c.Logger()), nil
}

// initRepersonServer creates the repersonalization HTTP server with its routes.
func (c *Container) initRepersonServer() (*http.Server, error) {
	handler, err := c.RepersonHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get reperson handler for reperson server: %w", err)
	}

	var store http.HealthChecker
	if client, err := c.RedisClient(); err == nil {
		store = client
	}

	server := http.NewServer(store, c.config.ServerHost, c.config.RepersonServerPort, c.Logger())
	server.SetupRouter(c.config, func(router *gin.Engine) {
		v1 := router.Group("/v1")
		v1.POST("/repersonalize", handler.RepersonalizeHandler)
		v1.POST("/repersonalize/batch", handler.BatchRepersonalizeHandler)
		v1.DELETE("/repersonalize/:id", handler.CleanupHandler)
	})

	return server, nil
}
