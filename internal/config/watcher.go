// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultReloadDebounce is how long the watcher waits for writes to settle.
const DefaultReloadDebounce = 200 * time.Millisecond

// Watcher reloads the configuration when a config file in the config
// directory changes and delivers each successfully loaded Config on Changes.
type Watcher struct {
	dir      string
	load     func() (*Config, error)
	watcher  *fsnotify.Watcher
	limiter  *rate.Limiter
	debounce time.Duration
	changes  chan *Config

	mu      sync.Mutex
	pending bool
	last    time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher on the default config directory that
// reloads the global configuration. The directory is created if needed so
// that a config written later is seen.
func NewWatcher() (*Watcher, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewWatcherForDir(dir, ReloadGlobal)
}

// NewWatcherForDir creates a watcher on dir that calls load on changes.
func NewWatcherForDir(dir string, load func() (*Config, error)) (*Watcher, error) {
	if load == nil {
		return nil, errors.New("config watcher: nil loader")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		load:     load,
		watcher:  fw,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 2),
		debounce: DefaultReloadDebounce,
		changes:  make(chan *Config, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go w.processEvents()
	return w, nil
}

// Changes delivers reloaded configurations. Only the newest unread value is
// kept.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

// Next blocks until a reloaded configuration arrives or ctx ends.
func (w *Watcher) Next(ctx context.Context) (*Config, error) {
	select {
	case cfg, ok := <-w.changes:
		if !ok {
			return nil, errors.New("config watcher closed")
		}
		return cfg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func isConfigFile(name string) bool {
	switch filepath.Base(name) {
	case "config.toml", "config.json":
		return true
	}
	return false
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	defer close(w.changes)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.mu.Lock()
				w.pending = true
				w.last = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "err", err)

		case <-ticker.C:
			w.mu.Lock()
			ready := w.pending && time.Since(w.last) >= w.debounce
			if ready {
				w.pending = false
			}
			w.mu.Unlock()

			if ready {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	if !w.limiter.Allow() {
		slog.Debug("config reload rate limited")
		// try again on the next tick
		w.mu.Lock()
		w.pending = true
		w.mu.Unlock()
		return
	}

	cfg, err := w.load()
	if err != nil || cfg == nil {
		slog.Warn("config reload failed", "dir", w.dir, "err", err)
		return
	}
	slog.Info("config reloaded", "dir", w.dir, "backend", cfg.Backend.URL)

	// drop a stale unread value so the newest config wins
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
	default:
	}
}
