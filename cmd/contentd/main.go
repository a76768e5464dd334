package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pagehub/contentd/cmd/contentd/container"
	"github.com/pagehub/contentd/cmd/contentd/repository"
	"github.com/pagehub/contentd/cmd/contentd/routes"
	"github.com/pagehub/contentd/common/bootstrap"
	"github.com/pagehub/contentd/common/queue"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap common components (config, logger, DB, queue, cache)
	components, err := bootstrap.Setup(ctx, "contentd",
		bootstrap.WithDBInitHook(repository.InitSchema),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap contentd: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Counter propagation consumer
	if err := components.Queue.Subscribe(ctx, queue.TopicCounterIncrement,
		serviceContainer.CounterService.HandleMessage); err != nil {
		components.Logger.Error("failed to subscribe counter consumer", "error", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, components)
	registerRoutes(e, serviceContainer)

	startServer(ctx, e, serviceContainer)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "contentd",
		})
	})
}

// registerRoutes registers all application routes
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterPageRoutes(e, serviceContainer)
	routes.RegisterUploadRoutes(e, serviceContainer)
}

// startServer runs the Echo server until a shutdown signal arrives,
// then drains in-flight side effects before stopping
func startServer(ctx context.Context, e *echo.Echo, serviceContainer *container.Container) {
	components := serviceContainer.Components
	port := components.Config.Service.Port

	serverErrors := make(chan error, 1)
	go func() {
		components.Logger.Info("starting contentd", "port", port)
		serverErrors <- e.Start(fmt.Sprintf(":%d", port))
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		components.Logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			components.Logger.Error("graceful shutdown failed", "error", err)
		}

		// Let queued cache writes and counter dispatches finish
		serviceContainer.PageService.Drain()
	}
}
