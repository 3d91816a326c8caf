package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"pingmon/config"
)

// watchConfig re-reads the config file whenever it changes and applies the
// settings that are safe to change at runtime (log level and alert
// thresholds). Anything else logs a notice that a restart is needed.
func watchConfig(ctx context.Context, path string, current *config.Config, alerts *alerter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory, editors tend to replace the file on save
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	log.Infof("Watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Config watcher error: %v", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			applyConfigChange(path, current, alerts)
		}
	}
}

func applyConfigChange(path string, current *config.Config, alerts *alerter) {
	next, err := loadConfig(path)
	if err != nil {
		log.Errorf("Ignoring config change: %v", err)
		return
	}
	if err := next.Validate(); err != nil {
		log.Errorf("Ignoring invalid config: %v", err)
		return
	}

	if next.Log.Level != current.Log.Level {
		setLogLevel(next.Log.Level)
		log.Infof("Log level changed to %s", next.Log.Level)
		current.Log.Level = next.Log.Level
	}

	if next.Alerts != current.Alerts {
		alerts.SetThresholds(next.Alerts.LossThreshold, next.Alerts.RTTThreshold.Duration())
		log.Infof("Alert thresholds changed to loss %.1f%%, rtt %v",
			next.Alerts.LossThreshold, next.Alerts.RTTThreshold.Duration())
		current.Alerts = next.Alerts
	}

	if next.Target != current.Target || next.Ping != current.Ping {
		log.Warnln("Target and ping settings cannot be changed at runtime, restart to apply")
	}
}
