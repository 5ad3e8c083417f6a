package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/wintile/internal/platform"
)

// WindowLister returns the current top-level windows.
type WindowLister func() ([]platform.Handle, error)

// WatcherConfig holds configuration for the watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// WindowEvents receives the differences the watcher observes.
type WindowEvents interface {
	Opened(h platform.Handle) error
	Closed(h platform.Handle)
}

// Watcher polls the top-level window list and reports windows that appear
// and disappear. It is the window-event hook of work mode: Register starts
// it and Unregister stops it.
type Watcher struct {
	interval    time.Duration
	listWindows WindowLister
	events      WindowEvents
	logger      *slog.Logger

	mu     sync.Mutex
	known  map[platform.Handle]bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a stopped watcher.
func NewWatcher(cfg WatcherConfig, listWindows WindowLister, events WindowEvents) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		interval:    interval,
		listWindows: listWindows,
		events:      events,
		logger:      logger,
	}
}

// Register reports every existing window as opened and starts polling.
// Registering a running watcher is a no-op.
func (w *Watcher) Register() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return nil
	}

	w.known = make(map[platform.Handle]bool)
	if err := w.scanLocked(); err != nil {
		return fmt.Errorf("register window hooks: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx, w.done)
	return nil
}

// Unregister stops polling and waits for the loop to exit.
func (w *Watcher) Unregister() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Running reports whether the watcher is polling.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("window watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("window watcher stopped")
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll performs a single pass.
func (w *Watcher) poll() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("window watcher panic recovered", "error", err)
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.scanLocked(); err != nil {
		w.logger.Error("window watcher: failed to list windows", "error", err)
	}
}

// ScanNow triggers an immediate pass.
func (w *Watcher) ScanNow() {
	w.poll()
}

func (w *Watcher) scanLocked() error {
	if w.known == nil {
		w.known = make(map[platform.Handle]bool)
	}

	handles, err := w.listWindows()
	if err != nil {
		return err
	}

	current := make(map[platform.Handle]bool, len(handles))
	for _, h := range handles {
		current[h] = true
		if w.known[h] {
			continue
		}
		w.known[h] = true
		if err := w.events.Opened(h); err != nil {
			w.logger.Warn("failed to manage window", "window", h.String(), "error", err)
		}
	}

	for h := range w.known {
		if !current[h] {
			delete(w.known, h)
			w.events.Closed(h)
		}
	}
	return nil
}
