// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long changes must settle before a reload fires.
// Editors save through temp-file renames that land as several events.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads the global configuration when the config file changes on
// disk and notifies the given callback with the fresh config.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(*Config)

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the config files in the state directory.
// onChange runs on the watcher goroutine after each successful reload; it
// must not block.
func NewWatcher(onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. The state directory is watched rather than the file
// itself: atomic saves replace the file, which would orphan a file watch.
func (w *Watcher) Watch() error {
	dir, err := StateDir()
	if err != nil {
		return err
	}
	if err := EnsureStateDir(); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents marks config-file events as pending for the debounce pass.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name != "config.toml" && name != "config.json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// processPending fires the reload once events settle past the debounce.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= watchDebounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if !fire {
				continue
			}
			if err := ReloadGlobal(); err != nil {
				continue
			}
			if w.onChange != nil {
				w.onChange(Global())
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
