// Package wizardmodule drives the step-by-step release builder: section
// sequencing, the session draft store and the overview/submit flow.
package wizardmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/database"
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
	ModuleID   = "system.wizard"
	ModuleName = "Release Builder"
)

// Module implements the release builder as a module
type Module struct {
	db      *gorm.DB
	service *Service
}

// Register registers the wizard module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate performs database migrations
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.WizardDraft{}); err != nil {
		return fmt.Errorf("failed to migrate wizard models: %w", err)
	}
	return nil
}

// Init initializes the wizard module. The release module loads first, so
// its service is available here.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}

	releases, err := services.Get[services.ReleaseService](services.ReleaseServiceName)
	if err != nil {
		return fmt.Errorf("release service unavailable: %w", err)
	}

	m.service = NewService(m.db, releases)
	if err := services.Register[services.DraftService](services.DraftServiceName, m.service); err != nil {
		return fmt.Errorf("failed to register draft service: %w", err)
	}

	logger.Info("wizard module initialized")
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	wizard := router.Group("/api/wizard")
	wizard.Use(middleware.RequireSession())
	{
		wizard.GET("/:id", m.getState)
		wizard.GET("/:id/drafts/:section", m.getDraft)
		wizard.PUT("/:id/drafts/:section", m.putDraft)
		wizard.POST("/:id/sections/:section", m.saveAndContinue)
		wizard.GET("/:id/overview", m.getOverview)
		wizard.POST("/:id/submit", m.submit)
	}
}
