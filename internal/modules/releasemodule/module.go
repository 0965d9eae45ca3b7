// Package releasemodule owns the release and track records, the release
// status machine and the moderation actions.
package releasemodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/database"
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
	ModuleID   = "system.releases"
	ModuleName = "Release Manager"
)

// Module implements the release catalog as a module
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	service  *Service
}

// Register registers the release module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate performs database migrations
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&database.Label{},
		&database.Release{},
		&database.Track{},
	); err != nil {
		return fmt.Errorf("failed to migrate release models: %w", err)
	}
	return nil
}

// Init initializes the release module
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.service = NewService(m.db, m.eventBus)
	if err := services.Register[services.ReleaseService](services.ReleaseServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register release service: %w", err)
	}

	logger.Info("release module initialized")
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	releases := router.Group("/api/releases")
	releases.Use(middleware.RequireSession())
	{
		releases.GET("", m.listReleases)
		releases.POST("", m.createRelease)
		releases.GET("/:id", m.getRelease)
		releases.PATCH("/:id", m.updateRelease)
		releases.POST("/:id/open", m.openForEdit)
		releases.POST("/:id/takedown/intent", m.takedownIntent)
		releases.POST("/:id/takedown", m.confirmTakedown)
	}

	tracks := router.Group("/api/tracks")
	tracks.Use(middleware.RequireSession())
	{
		tracks.PATCH("/:id", m.updateTrack)
	}

	// Moderator actions are gated per-request; RequireRole re-validates the
	// role on every call rather than trusting the session view.
	moderation := router.Group("/api/moderation")
	moderation.Use(middleware.RequireSession(), middleware.RequireRole(database.RoleModerator))
	{
		moderation.GET("/released", m.listReleased)
		moderation.POST("/releases/:id/approve", m.approveRelease)
		moderation.POST("/releases/:id/reject", m.rejectRelease)
		moderation.POST("/releases/:id/upc", m.assignUPC)
		moderation.POST("/tracks/:id/isrc", m.assignISRC)
	}

	meta := router.Group("/api/catalogs")
	meta.Use(middleware.RequireSession())
	{
		meta.GET("/territories", m.listTerritories)
		meta.GET("/services", m.listServices)
	}
}
