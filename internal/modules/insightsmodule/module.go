// Package insightsmodule serves the dashboard's activity feed, catalog stats
// and host system snapshot, plus the accounting and marketing placeholders.
package insightsmodule

import (
	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"github.com/soundfoundry/releasedesk/internal/middleware"
	"github.com/soundfoundry/releasedesk/internal/modules/modulemanager"
	"gorm.io/gorm"
)

// Auto-register the module when imported
func init() {
	Register()
}

const (
	ModuleID   = "user.insights"
	ModuleName = "Insights"

	activitySize = 100
)

// Module implements the dashboard insights surface as a module
type Module struct {
	db          *gorm.DB
	eventBus    events.EventBus
	activity    *activityRing
	unsubscribe func()
}

// Register registers the insights module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return false }

// Migrate performs database migrations. Insights read release rows owned by
// the release module.
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init initializes the insights module and starts collecting activity.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.activity = newActivityRing(activitySize)
	if m.eventBus != nil {
		m.unsubscribe = m.eventBus.Subscribe("*", m.activity.Add)
	}

	logger.Info("insights module initialized")
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	insights := router.Group("/api/insights")
	insights.Use(middleware.RequireSession())
	{
		insights.GET("/activity", m.getActivity)
		insights.GET("/activity/ws", m.streamActivity)
		insights.GET("/system", m.getSystem)
		insights.GET("/stats", m.getStats)
	}

	// Dashboard shell placeholders. The panels exist but carry no data yet.
	accounting := router.Group("/api/accounting")
	accounting.Use(middleware.RequireSession())
	{
		accounting.GET("", m.getAccounting)
	}

	marketing := router.Group("/api/marketing")
	marketing.Use(middleware.RequireSession())
	{
		marketing.GET("", m.getMarketing)
	}
}
