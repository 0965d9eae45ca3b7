// Package config provides the centralized configuration system.
//
// Configuration is loaded once at startup from a YAML file (path taken from
// RELEASEDESK_CONFIG_PATH, falling back to ./releasedesk.yaml), with
// environment variables overriding individual values. Components read the
// current configuration through Get().
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StorageConfig holds object storage settings. Buckets live as directories
// under DataDir.
type StorageConfig struct {
	DataDir       string `yaml:"data_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// AuthConfig holds session and takedown confirmation settings.
type AuthConfig struct {
	SessionTTL       time.Duration `yaml:"session_ttl"`
	TakedownTokenTTL time.Duration `yaml:"takedown_token_ttl"`
}

// CatalogConfig holds release catalog settings.
type CatalogConfig struct {
	// DefaultLabel is used for the default ℗ line on new tracks.
	DefaultLabel string `yaml:"default_label"`
}

// LoggingConfig holds logging settings. Level is hot-reloadable.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

var (
	mu         sync.RWMutex
	current    = defaults()
	loadedPath string
)

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "releasedesk.db",
		},
		Storage: StorageConfig{
			DataDir:       "./releasedesk-data",
			PublicBaseURL: "/api/storage",
		},
		Auth: AuthConfig{
			SessionTTL:       24 * time.Hour,
			TakedownTokenTTL: 5 * time.Minute,
		},
		Catalog: CatalogConfig{
			DefaultLabel: "Releasedesk Records",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path and applies environment overrides.
// An empty path loads defaults plus environment overrides.
func Load(path string) error {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	current = cfg
	loadedPath = path
	mu.Unlock()
	return nil
}

// Get returns the current configuration.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Path returns the path the configuration was loaded from, if any.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return loadedPath
}

// DefaultPath probes the conventional config locations.
func DefaultPath() string {
	if p := os.Getenv("RELEASEDESK_CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("./releasedesk.yaml"); err == nil {
		return "./releasedesk.yaml"
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELEASEDESK_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RELEASEDESK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RELEASEDESK_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("RELEASEDESK_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RELEASEDESK_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("RELEASEDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	return nil
}
