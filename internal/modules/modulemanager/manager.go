// Package modulemanager provides registration and lifecycle management for
// application modules.
package modulemanager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"gorm.io/gorm"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init() error               // Initialize the module
}

// RouteRegistrar is an optional interface for modules that register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	modules         map[string]Module
	disabledModules map[string]bool
	mu              sync.RWMutex
	initialized     bool
}

// Registry is the global module registry
var Registry = &ModuleRegistry{
	modules:         make(map[string]Module),
	disabledModules: make(map[string]bool),
}

// Register adds a module to the registry
func Register(m Module) {
	Registry.Register(m)
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module %s (%s) registered after initialization", m.Name(), m.ID())
	}

	r.modules[m.ID()] = m
	logger.Info("module registered: %s (%s)", m.Name(), m.ID())
}

// LoadAll migrates and initializes all registered modules
func LoadAll(db *gorm.DB) error {
	return Registry.LoadAll(db)
}

// LoadAll migrates and initializes all registered modules. Modules load in
// deterministic ID order; cross-module wiring happens through the service
// registry, so init order only matters for service availability and IDs are
// chosen so init-time providers sort before their consumers (system.assets,
// system.auth, system.releases, system.wizard, user.insights); request-time
// lookups resolve lazily.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module system already initialized")
		return nil
	}

	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		if r.disabledModules[id] {
			if r.modules[id].Core() {
				return fmt.Errorf("attempted to disable core module: %s", id)
			}
			logger.Warn("skipping module %s (disabled)", r.modules[id].Name())
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	logger.Info("loading %d modules", len(ids))

	for i, id := range ids {
		module := r.modules[id]
		logger.Info("[%d/%d] initializing module: %s", i+1, len(ids), module.Name())

		if err := module.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", module.Name(), err)
		}
		if err := module.Init(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", module.Name(), err)
		}
	}

	r.initialized = true
	return nil
}

// DisableModule marks a module as disabled (for development/testing only)
func DisableModule(id string) {
	Registry.DisableModule(id)
}

// DisableModule marks a module as disabled
func (r *ModuleRegistry) DisableModule(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, exists := r.modules[id]
	if !exists {
		logger.Warn("attempted to disable non-existent module: %s", id)
		return
	}
	if module.Core() {
		logger.Error("cannot disable core module: %s", id)
		return
	}

	r.disabledModules[id] = true
}

// GetModule returns a module by ID
func GetModule(id string) (Module, bool) {
	return Registry.GetModule(id)
}

// GetModule returns a module by ID
func (r *ModuleRegistry) GetModule(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	module, exists := r.modules[id]
	return module, exists
}

// ListModules returns all registered modules
func ListModules() []Module {
	return Registry.ListModules()
}

// ListModules returns all registered modules
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modules := make([]Module, 0, len(r.modules))
	for _, module := range r.modules {
		modules = append(modules, module)
	}
	return modules
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func RegisterRoutes(router *gin.Engine) {
	Registry.RegisterRoutes(router)
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func (r *ModuleRegistry) RegisterRoutes(router *gin.Engine) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range r.modules {
		if registrar, ok := module.(RouteRegistrar); ok {
			logger.Debug("registering routes for module: %s", module.Name())
			registrar.RegisterRoutes(router)
		}
	}
}
