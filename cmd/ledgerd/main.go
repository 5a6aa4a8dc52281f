package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/middleware"
	"github.com/lyzr/crewledger/cmd/ledgerd/routes"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/events"
	"github.com/lyzr/crewledger/common/server"
)

const serviceName = "ledgerd"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap common components (store, locker, logger, cache, bus, telemetry)
	components, err := bootstrap.Setup(ctx, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap %s: %v\n", serviceName, err)
		os.Exit(1)
	}
	defer components.Shutdown(context.Background())

	// Initialize service container (all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	if err := subscribeLedgerEvents(ctx, serviceContainer); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to subscribe to ledger events: %v\n", err)
		os.Exit(1)
	}
	go serviceContainer.Feed.Run(ctx)

	e := setupEcho()
	setupMiddleware(e, components)
	setupHealthCheck(e, components)
	registerRoutes(e, serviceContainer)

	srv := server.New(serviceName, components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.ExtractActor())

	if components.RateLimiter != nil {
		cfg := components.Config.RateLimit
		e.Use(middleware.WriteRateLimit(components.RateLimiter, cfg.Writes, cfg.Window))
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": serviceName,
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterShiftRoutes(e, serviceContainer)
	routes.RegisterLedgerRoutes(e, serviceContainer)
	routes.RegisterSlotRoutes(e, serviceContainer)
	routes.RegisterFeedRoutes(e, serviceContainer)
}

// subscribeLedgerEvents drops cached partitions saved by any replica and
// forwards each save to feed watchers
func subscribeLedgerEvents(ctx context.Context, c *container.Container) error {
	components := c.Components
	if components.Bus == nil {
		return nil
	}

	return components.Bus.Subscribe(ctx, events.TopicLedgerSaved, func(ctx context.Context, key string, value []byte) error {
		ev, err := events.DecodeSavedEvent(value)
		if err != nil {
			return err
		}
		if components.CachedStore != nil {
			components.CachedStore.Invalidate(ctx, ev.Partition)
		}
		c.Feed.Publish(ev.Partition, value)
		components.Logger.Debug("ledger event handled",
			"partition", ev.Partition,
			"operation", ev.Operation,
			"actor", ev.Actor)
		return nil
	})
}
