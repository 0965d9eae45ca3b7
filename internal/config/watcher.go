package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/soundfoundry/releasedesk/internal/logger"
)

// Watch reloads the configuration file when it changes on disk. Only
// hot-reloadable settings take effect mid-run (currently the log level);
// everything else applies on next restart. Watch returns immediately when no
// config file was loaded.
func Watch(ctx context.Context) error {
	path := Path()
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := Load(path); err != nil {
					logger.Warn("config reload failed, keeping previous configuration: %v", err)
					continue
				}
				logger.SetLevel(Get().Logging.Level)
				logger.Info("configuration reloaded from %s", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error: %v", err)
			}
		}
	}()

	return nil
}
