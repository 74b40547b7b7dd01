// Package watcher invalidates the template cache when files under the
// template directory change, so edits show up without a restart.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mintaslang/dew/internal/logging"
)

// Invalidator is the slice of the renderer the watcher needs.
type Invalidator interface {
	Invalidate(name string)
}

// TemplateWatcher watches a template directory tree and reports changed
// template names to an Invalidator, debounced so editor save bursts
// collapse into one invalidation.
type TemplateWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	target  Invalidator
	logger  logging.Logger
	delay   time.Duration

	mutex   sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher over root. Only files with a template extension
// (.html, .htm, .dew) trigger invalidation.
func New(root string, target Invalidator, logger logging.Logger) (*TemplateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	tw := &TemplateWatcher{
		root:    root,
		watcher: fsw,
		target:  target,
		logger:  logger.WithComponent("watcher"),
		delay:   100 * time.Millisecond,
		pending: map[string]struct{}{},
	}
	if err := tw.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return tw, nil
}

func (tw *TemplateWatcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return tw.watcher.Add(path)
		}
		return nil
	})
}

// Start runs the watch loop until the context is canceled.
func (tw *TemplateWatcher) Start(ctx context.Context) {
	go tw.loop(ctx)
}

// Stop closes the underlying watcher.
func (tw *TemplateWatcher) Stop() error {
	tw.mutex.Lock()
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.mutex.Unlock()
	return tw.watcher.Close()
}

func (tw *TemplateWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handle(ctx, event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (tw *TemplateWatcher) handle(ctx context.Context, event fsnotify.Event) {
	// New directories must be added to the watch set before their files
	// produce events.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			tw.addRecursive(event.Name)
			return
		}
	}

	if !isTemplate(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	name, err := filepath.Rel(tw.root, event.Name)
	if err != nil {
		name = filepath.Base(event.Name)
	}
	name = filepath.ToSlash(name)

	tw.mutex.Lock()
	tw.pending[name] = struct{}{}
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.delay, func() { tw.flush(ctx) })
	tw.mutex.Unlock()
}

func (tw *TemplateWatcher) flush(ctx context.Context) {
	tw.mutex.Lock()
	names := make([]string, 0, len(tw.pending))
	for name := range tw.pending {
		names = append(names, name)
	}
	tw.pending = map[string]struct{}{}
	tw.mutex.Unlock()

	for _, name := range names {
		tw.target.Invalidate(name)
		tw.logger.Debug(ctx, "template invalidated", "name", name)
	}
}

func isTemplate(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".dew":
		return true
	}
	return false
}
