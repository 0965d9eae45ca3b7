// Package logger provides the application-wide logging facade.
package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu   sync.RWMutex
	root = hclog.New(&hclog.LoggerOptions{
		Name:   "releasedesk",
		Level:  hclog.Info,
		Output: os.Stderr,
	})
)

// SetLevel changes the minimum level of the root logger. The config watcher
// calls this on hot reload.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	root.SetLevel(hclog.LevelFromString(level))
}

// Named returns a sub-logger for a component (e.g. "releasemodule").
func Named(name string) hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(name)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Error(fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	root.Debug(fmt.Sprintf(format, args...))
}
