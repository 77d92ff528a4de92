package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
)

// ChangeKind classifies a project file change.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

// String returns the string representation of the ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one debounced project file change.
type Change struct {
	Kind ChangeKind
	ID   fileid.VirtualID
	Path string
}

// ChangeHandler receives batches of debounced changes.
type ChangeHandler func(changes []Change)

// Watcher watches a project root and delivers debounced change batches
// for files the project accepts.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	delay    time.Duration
	handlers []ChangeHandler
	logger   logging.Logger

	mu      sync.Mutex
	pending map[string]Change
	timer   *time.Timer
	batches chan []Change
}

// DefaultDebounce is the grace period for grouping rapid changes.
const DefaultDebounce = 300 * time.Millisecond

// NewWatcher creates a watcher over root. Call Start to begin delivery.
func NewWatcher(root string, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewIOError("cannot create filesystem watcher", err)
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Watcher{
		root:    root,
		watcher: fsw,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]Change),
		batches: make(chan []Change, 10),
	}, nil
}

// AddHandler registers a handler for debounced change batches.
func (w *Watcher) AddHandler(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start registers the project tree and launches the watch loops.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != w.root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return errors.NewIOError("cannot watch project root", err).
			WithContext("root", w.root)
	}

	go w.watchLoop(ctx)
	go w.deliverLoop(ctx)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "filesystem watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// New directories must join the watch set before their files change.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn(ctx, err, "cannot watch new directory", "path", event.Name)
				}
			}
			return
		}
	}
	if !Accepted(event.Name) {
		return
	}
	id, ok := fileid.ToVirtual(w.root, event.Name)
	if !ok {
		return
	}

	var kind ChangeKind
	switch {
	case event.Op.Has(fsnotify.Create):
		kind = ChangeCreated
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		kind = ChangeDeleted
	default:
		kind = ChangeModified
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Last event per path wins within a debounce window.
	w.pending[event.Name] = Change{Kind: kind, ID: id, Path: event.Name}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(w.pending))
	for _, change := range w.pending {
		batch = append(batch, change)
	}
	w.pending = make(map[string]Change)
	w.mu.Unlock()

	select {
	case w.batches <- batch:
	default:
		// Skip if channel is full
	}
}

func (w *Watcher) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-w.batches:
			w.mu.Lock()
			handlers := w.handlers
			w.mu.Unlock()
			for _, handler := range handlers {
				handler(batch)
			}
		}
	}
}
