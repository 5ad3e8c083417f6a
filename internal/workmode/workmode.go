// Package workmode switches the manager between work mode, where windows are
// tracked and tiled, and the normal desktop.
package workmode

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/wintile/internal/config"
)

// Hooks registers and unregisters the window-event listeners.
type Hooks interface {
	Register() error
	Unregister() error
}

// Bar creates and closes the status bar.
type Bar interface {
	Create() error
	Close() error
}

// Taskbars hides and shows the platform task bars.
type Taskbars interface {
	HideTaskbars() error
	ShowTaskbars() error
}

// Popup is any transient popup that must not outlive work mode.
type Popup interface {
	Close()
}

// Unmanager restores and forgets every managed window.
type Unmanager interface {
	UnmanageEverything() error
}

// ConfigSource supplies the current configuration.
type ConfigSource interface {
	Snapshot() *config.Config
}

// Deps are the collaborators an Orchestrator drives. Popup may be nil.
type Deps struct {
	Config    ConfigSource
	Hooks     Hooks
	Bar       Bar
	Taskbars  Taskbars
	Popup     Popup
	Unmanager Unmanager
	Logger    *slog.Logger
}

// Orchestrator owns the work-mode flag. Toggles are serialized and the flag
// only flips once a transition has completed. Enabled never blocks, so
// collaborators may read the flag while a transition is running.
type Orchestrator struct {
	mu   sync.Mutex
	on   atomic.Bool
	deps Deps
}

// New returns an orchestrator in the off state.
func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Orchestrator{deps: deps}
}

// Enabled reports whether work mode is on.
func (o *Orchestrator) Enabled() bool {
	return o.on.Load()
}

// Toggle switches work mode on or off.
func (o *Orchestrator) Toggle() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.toggleLocked()
}

// Set turns work mode on or off, doing nothing if it is already in that state.
func (o *Orchestrator) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.on.Load() == on {
		return nil
	}
	return o.toggleLocked()
}

func (o *Orchestrator) toggleLocked() error {
	cfg := o.deps.Config.Snapshot()

	on := o.on.Load()

	var err error
	if on {
		err = o.turnOff(cfg.DisplayAppBar, cfg.RemoveTaskBar)
	} else {
		err = o.turnOn(cfg.DisplayAppBar, cfg.RemoveTaskBar)
	}
	if err != nil {
		return err
	}

	o.on.Store(!on)
	o.deps.Logger.Info("work mode changed", "enabled", !on)
	return nil
}

func (o *Orchestrator) turnOn(displayAppBar, removeTaskBar bool) error {
	if err := o.deps.Hooks.Register(); err != nil {
		return fmt.Errorf("register window hooks: %w", err)
	}
	if displayAppBar {
		if err := o.deps.Bar.Create(); err != nil {
			if uerr := o.deps.Hooks.Unregister(); uerr != nil {
				o.deps.Logger.Warn("failed to roll back window hooks", "error", uerr)
			}
			return fmt.Errorf("create app bar: %w", err)
		}
	}
	if removeTaskBar {
		if err := o.deps.Taskbars.HideTaskbars(); err != nil {
			o.deps.Logger.Warn("failed to hide task bars", "error", err)
		}
	}
	return nil
}

func (o *Orchestrator) turnOff(displayAppBar, removeTaskBar bool) error {
	if err := o.deps.Hooks.Unregister(); err != nil {
		return fmt.Errorf("unregister window hooks: %w", err)
	}
	if o.deps.Popup != nil {
		o.deps.Popup.Close()
	}
	if displayAppBar {
		if err := o.deps.Bar.Close(); err != nil {
			o.deps.Logger.Warn("failed to close app bar", "error", err)
		}
	}
	if removeTaskBar {
		if err := o.deps.Taskbars.ShowTaskbars(); err != nil {
			o.deps.Logger.Warn("failed to show task bars", "error", err)
		}
	}
	// The unmanager empties its registry even when a restore fails, so the
	// hooks are gone and no window is tracked while the flag still reads on.
	// Toggling again completes the transition.
	if err := o.deps.Unmanager.UnmanageEverything(); err != nil {
		o.deps.Logger.Warn("work mode left on after a failed restore, toggle again to turn it off", "error", err)
		return fmt.Errorf("unmanage windows: %w", err)
	}
	return nil
}
