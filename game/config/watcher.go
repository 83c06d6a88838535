package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultWatchDebounce is the quiet period after the last change before the
// cache is refreshed
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch refreshes the cache whenever a .json file in the config directory is
// written, created, removed or renamed. It returns once the watcher is
// registered; watching stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(m.configDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", m.configDir, err)
	}

	go m.watchLoop(ctx, watcher, debounce)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) {
	defer watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := m.RefreshCache(); err != nil {
					log.Warn().Err(err).Msg("config refresh failed")
					return
				}
				log.Info().Str("file", filepath.Base(event.Name)).Msg("configs reloaded")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("dir", m.configDir).Msg("config watcher error")
		}
	}
}
