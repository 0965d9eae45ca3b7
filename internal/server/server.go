// Package server wires the router, the event bus and the module system.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/api"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/soundfoundry/releasedesk/internal/modules/assetmodule"
	_ "github.com/soundfoundry/releasedesk/internal/modules/authmodule"
	_ "github.com/soundfoundry/releasedesk/internal/modules/insightsmodule"
	_ "github.com/soundfoundry/releasedesk/internal/modules/releasemodule"
	_ "github.com/soundfoundry/releasedesk/internal/modules/wizardmodule"
)

var (
	systemEventBus     events.EventBus
	modulesInitialized bool
)

// SetupRouter configures and returns the main router.
func SetupRouter() (*gin.Engine, error) {
	r := gin.New()

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.Use(api.ErrorMiddleware())
	r.Use(middleware.RequestLogger())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := initializeEventBus(); err != nil {
		return nil, err
	}
	if err := initializeModules(); err != nil {
		return nil, err
	}

	modulemanager.RegisterRoutes(r)
	return r, nil
}

func initializeEventBus() error {
	if systemEventBus != nil {
		return nil
	}

	systemEventBus = events.NewEventBus(256)
	if err := systemEventBus.Start(context.Background()); err != nil {
		return err
	}
	events.SetGlobalEventBus(systemEventBus)
	return nil
}

func initializeModules() error {
	if modulesInitialized {
		return nil
	}

	if err := modulemanager.LoadAll(database.GetDB()); err != nil {
		return err
	}

	modulesInitialized = true
	logModuleStatus()
	return nil
}

func logModuleStatus() {
	modules := modulemanager.ListModules()
	logger.Info("module system initialized with %d modules", len(modules))
	for _, m := range modules {
		logger.Info("  module loaded: %s (%s)", m.ID(), m.Name())
	}
}

// GetEventBus returns the system event bus instance.
func GetEventBus() events.EventBus {
	return systemEventBus
}

// ShutdownEventBus gracefully shuts down the event bus.
func ShutdownEventBus() error {
	if systemEventBus == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return systemEventBus.Stop(ctx)
}
