package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundfoundry/releasedesk/internal/config"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/server"
)

func main() {
	configPath := config.DefaultPath()
	if err := config.Load(configPath); err != nil {
		logger.Warn("failed to load configuration from %s: %v, using defaults", configPath, err)
	} else if configPath != "" {
		logger.Info("configuration loaded from %s", configPath)
	}

	cfg := config.Get()
	logger.SetLevel(cfg.Logging.Level)

	if err := database.Initialize(); err != nil {
		logger.Error("failed to initialize database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reloads the log level when the config file changes.
	if config.Path() != "" {
		if err := config.Watch(ctx); err != nil {
			logger.Warn("config watcher unavailable: %v", err)
		}
	}

	router, err := server.SetupRouter()
	if err != nil {
		logger.Error("failed to set up server: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error: %v", err)
		}
		if err := server.ShutdownEventBus(); err != nil {
			logger.Error("event bus shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Info("starting releasedesk on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server shutdown complete")
}
