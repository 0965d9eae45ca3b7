// Package assetmodule owns upload handling, asset validation and the
// disk-backed object storage serving /api/storage.
package assetmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/config"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/modules/modulemanager"
	"github.com/soundfoundry/releasedesk/internal/services"
	"gorm.io/gorm"
)

// Auto-register the module when imported
func init() {
	Register()
}

const (
	ModuleID   = "system.assets"
	ModuleName = "Asset Storage"
)

// Module implements asset storage as a module
type Module struct {
	store    *Store
	eventBus events.EventBus
}

// Register registers the asset module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate performs database migrations. Assets keep no rows of their own;
// references live on releases and tracks.
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init initializes the asset module
func (m *Module) Init() error {
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	cfg := config.Get()
	store, err := NewStore(cfg.Storage.DataDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}
	m.store = store

	if err := services.Register[services.AssetService](services.AssetServiceName, m.store); err != nil {
		return fmt.Errorf("failed to register asset service: %w", err)
	}

	logger.Info("asset module initialized, data dir: %s", cfg.Storage.DataDir)
	return nil
}

// releaseService resolves the release service at call time. This module
// loads before the release module, so Init cannot capture it.
func (m *Module) releaseService() (services.ReleaseService, error) {
	return services.Get[services.ReleaseService](services.ReleaseServiceName)
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	uploads := router.Group("/api/releases")
	uploads.Use(middleware.RequireSession())
	{
		uploads.POST("/:id/artwork", m.uploadArtwork)
		uploads.POST("/:id/audio", m.uploadAudio)
		uploads.POST("/:id/video", m.uploadVideo)
	}

	storage := router.Group("/api/storage")
	storage.Use(middleware.RequireSession())
	{
		storage.GET("/:bucket/*path", m.serveObject)
	}
}
