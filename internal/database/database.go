// Package database owns the gorm connection and the shared domain models.
package database

import (
	"fmt"
	"sync"

	"github.com/soundfoundry/releasedesk/internal/config"
	"github.com/soundfoundry/releasedesk/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// Initialize opens the database connection described by the current
// configuration. Modules run their own migrations during LoadAll.
func Initialize() error {
	cfg := config.Get()

	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	dbMu.Lock()
	db = conn
	dbMu.Unlock()

	logger.Info("database initialized: driver=%s", cfg.Database.Driver)
	return nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// SetDB replaces the shared connection. Used by tests.
func SetDB(conn *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	db = conn
}
