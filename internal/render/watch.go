// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces editor save bursts into one reload.
const reloadDebounce = 150 * time.Millisecond

// Watch reloads the templates whenever a file in the override directory
// changes, until ctx is done. notify, if set, receives the result of each
// reload and is called from the watcher goroutine.
func (e *Engine) Watch(ctx context.Context, notify func(error)) error {
	dir := e.opts.TemplateDir
	if dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go e.watchLoop(ctx, watcher, notify)
	return nil
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, notify func(error)) {
	defer watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".tmpl" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			err := e.Reload()
			if err != nil {
				e.log.Warn("template reload failed", slog.String("error", err.Error()))
			} else {
				e.log.Info("templates reloaded", slog.String("dir", e.opts.TemplateDir))
			}
			if notify != nil {
				notify(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.log.Warn("template watcher error", slog.String("error", err.Error()))
		}
	}
}
