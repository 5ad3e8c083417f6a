// Package daemon wires the window manager together: it decides which windows
// to manage, runs their actions and serves the control socket.
package daemon

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/rules"
	"github.com/1broseidon/wintile/internal/tiling"
	"github.com/1broseidon/wintile/internal/window"
)

// Manager turns window events into registry changes and reflows.
type Manager struct {
	api      platform.Backend
	registry *window.Registry
	tiler    *tiling.Tiler
	store    *config.Store
	logger   *slog.Logger
}

// NewManager creates a manager.
func NewManager(api platform.Backend, registry *window.Registry, tiler *tiling.Tiler, store *config.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, registry: registry, tiler: tiler, store: store, logger: logger}
}

// Opened decides whether to manage a new window. Windows whose rule says not
// to manage them, and windows smaller than the configured minimum, are left
// alone.
func (m *Manager) Opened(h platform.Handle) error {
	if m.registry.Contains(h) {
		return nil
	}
	cfg := m.store.Snapshot()

	w := window.New(h)
	title, err := m.api.Title(h)
	if err != nil {
		m.logger.Debug("window title unavailable", "window", h.String(), "error", err)
	}
	name, err := w.LookupProcessName(m.api)
	if err != nil {
		m.logger.Debug("window process unavailable", "window", h.String(), "error", err)
	}
	w.Title, w.ProcessName = title, name

	rule, matched := rules.Find(cfg.Rules, title, name)
	w.Rule = rule
	if !rule.Manage {
		m.logger.Debug("window excluded by rule", "window", h.String(), "title", title, "process", name, "pattern", fmt.Sprint(rule.Pattern))
		return nil
	}

	if err := w.Manage(m.api); err != nil {
		return err
	}
	orig, _ := w.Original()
	if orig.Rect.Width() < int(cfg.MinWidth) || orig.Rect.Height() < int(cfg.MinHeight) {
		m.logger.Debug("window below minimum size", "window", h.String(), "title", title,
			"width", orig.Rect.Width(), "height", orig.Rect.Height())
		return nil
	}

	if orig.Maximized {
		if err := w.Restore(m.api); err != nil {
			return err
		}
	}
	if cfg.RemoveTitleBar && rule.RemoveFrame {
		w.RemoveTitleBar(cfg.UseBorder)
		if err := w.UpdateStyle(m.api); err != nil {
			return fmt.Errorf("remove title bar: %w", err)
		}
	}

	active := m.tiler.ActiveWorkspace()
	w.Workspace = rule.Workspace
	if w.Workspace < 0 {
		w.Workspace = active
	}
	if w.Workspace != active {
		if err := w.Hide(m.api); err != nil {
			return err
		}
	}

	if err := m.registry.Insert(w); err != nil {
		return err
	}
	m.logger.Info("managing window", "window", h.String(), "title", title, "process", name,
		"workspace", w.Workspace, "rule_matched", matched)
	return m.tiler.Reflow(cfg)
}

// Closed forgets a destroyed window. There is nothing to restore.
func (m *Manager) Closed(h platform.Handle) {
	if _, ok := m.registry.Remove(h); !ok {
		return
	}
	m.logger.Info("window closed", "window", h.String())
	if err := m.Reflow(); err != nil {
		m.logger.Warn("reflow failed", "error", err)
	}
}

// Unmanage restores one window, forgets it and reflows the rest.
func (m *Manager) Unmanage(h platform.Handle) error {
	if err := m.registry.Unmanage(m.api, h); err != nil {
		return err
	}
	return m.Reflow()
}

// Drop forgets a window without restoring it.
func (m *Manager) Drop(h platform.Handle) error {
	if _, ok := m.registry.Remove(h); !ok {
		return fmt.Errorf("%s: %w", h, window.ErrNotManaged)
	}
	return m.Reflow()
}

// UnmanageEverything restores and forgets every managed window.
func (m *Manager) UnmanageEverything() error {
	return m.registry.UnmanageAll(m.api)
}

// Reflow lays out the active workspace with the current configuration.
func (m *Manager) Reflow() error {
	return m.tiler.Reflow(m.store.Snapshot())
}

// Focused returns the managed window that has the keyboard focus.
func (m *Manager) Focused() (window.Window, bool) {
	h, err := m.api.Foreground()
	if err != nil || h.IsZero() {
		return window.Window{}, false
	}
	return m.registry.Get(h)
}

// Windows returns every managed window in registry order.
func (m *Manager) Windows() []window.Window {
	return m.registry.All()
}
