// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// WORKSPACE WATCHER
// =============================================================================

// DefaultDebounce batches bursts of filesystem events into one
// notification.
const DefaultDebounce = 300 * time.Millisecond

// Watcher observes the workspace for external changes (another process
// or shell editing files) and notifies the UI so listings stay fresh.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(changed []string)

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher over root. onChange receives the batch
// of changed workspace-relative paths after the debounce window.
func NewWatcher(root string, debounce time.Duration, onChange func(changed []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		root:     root,
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching the root and all folders beneath it.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents()
	go w.flushPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		// Watch failures on individual directories are not fatal.
		_ = w.watcher.Add(path)
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.markPending(event.Name)
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) markPending(abs string) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.pending[rel] = time.Now()
	w.mu.Unlock()
}

// flushPending delivers batched changes once they have been quiet for
// the debounce window.
func (w *Watcher) flushPending() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			var ready []string
			w.mu.Lock()
			for rel, t := range w.pending {
				if now.Sub(t) >= w.debounce {
					ready = append(ready, rel)
					delete(w.pending, rel)
				}
			}
			w.mu.Unlock()
			if len(ready) > 0 && w.onChange != nil {
				w.onChange(ready)
			}
		}
	}
}
