// Package authmodule owns accounts, sessions, invitation tokens and role
// membership. It answers the role checks the rest of the system treats as
// authoritative.
package authmodule

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
	ModuleID   = "system.auth"
	ModuleName = "Auth Manager"
)

// Module implements authentication as a module
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	service  *Service
}

// Register registers the auth module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate performs database migrations
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&database.Profile{},
		&database.UserRole{},
		&database.Session{},
		&database.InvitationToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate auth models: %w", err)
	}
	return nil
}

// Init initializes the auth module
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.service = NewService(m.db, m.eventBus)
	if err := services.Register[services.AuthService](services.AuthServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register auth service: %w", err)
	}

	logger.Info("auth module initialized")
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/signin", m.signIn)
		auth.POST("/confirm-invitation", m.confirmInvitation)
	}

	authed := router.Group("/api/auth")
	authed.Use(middleware.RequireSession())
	{
		authed.POST("/signout", m.signOut)
		authed.GET("/session", m.currentSession)
		authed.GET("/roles", m.userRoles)
		authed.GET("/has-role/:role", m.hasRole)
	}

	settings := router.Group("/api/settings")
	settings.Use(middleware.RequireSession())
	{
		settings.GET("/profile", m.getProfile)
		settings.PUT("/profile", m.updateProfile)
	}
}
