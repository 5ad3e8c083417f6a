package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/tiling"
	"github.com/1broseidon/wintile/internal/window"
)

// Invoker runs script callbacks by id.
type Invoker interface {
	Invoke(id int) error
}

// WorkMode is the part of the work-mode orchestrator the dispatcher uses.
type WorkMode interface {
	Enabled() bool
	Toggle() error
}

// DispatcherConfig holds the dispatcher's collaborators. Launch and Quit
// default to starting a process and doing nothing.
type DispatcherConfig struct {
	API      platform.Backend
	Manager  *Manager
	Tiler    *tiling.Tiler
	Store    *config.Store
	WorkMode WorkMode
	Scripts  func() Invoker
	Launch   func(command string) error
	Quit     func()
	Logger   *slog.Logger
}

// Dispatcher executes keybinding actions.
type Dispatcher struct {
	cfg DispatcherConfig
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Launch == nil {
		cfg.Launch = StartProcess
	}
	if cfg.Quit == nil {
		cfg.Quit = func() {}
	}
	return &Dispatcher{cfg: cfg}
}

// StartProcess starts command without waiting for it. The command line is
// split on whitespace.
func StartProcess(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %q: %w", command, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Handle runs an action and logs any failure. It matches hotkeys.DispatchFunc.
func (d *Dispatcher) Handle(a binding.Action) {
	if err := d.Dispatch(a); err != nil {
		d.cfg.Logger.Error("action failed", "action", a.String(), "error", err)
	}
}

// Dispatch runs an action. Actions that need a focused managed window do
// nothing when there is none.
func (d *Dispatcher) Dispatch(a binding.Action) error {
	logger := d.cfg.Logger
	logger.Debug("dispatching action", "action", a.String())

	switch a.Kind {
	case binding.Launch:
		return d.cfg.Launch(a.Command)
	case binding.Quit:
		d.cfg.Quit()
		return nil
	case binding.ToggleWorkMode:
		return d.cfg.WorkMode.Toggle()
	case binding.Callback:
		if d.cfg.Scripts == nil || d.cfg.Scripts() == nil {
			return fmt.Errorf("callback %d: no script loaded", a.CallbackID)
		}
		return d.cfg.Scripts().Invoke(a.CallbackID)
	case binding.IncrementConfig:
		return d.alterConfig(d.cfg.Store.IncrementField(a.Field, a.Value))
	case binding.DecrementConfig:
		return d.alterConfig(d.cfg.Store.DecrementField(a.Field, a.Value))
	case binding.ToggleConfig:
		return d.alterConfig(d.cfg.Store.ToggleField(a.Field))
	case binding.ChangeWorkspace:
		return d.cfg.Tiler.SetWorkspace(a.ID, d.cfg.Store.Snapshot())
	case binding.ResetRow, binding.ResetColumn:
		return d.cfg.Manager.Reflow()
	case binding.Resize, binding.Split, binding.MoveWorkspaceToMonitor:
		logger.Warn("action not supported by the grid layout", "action", a.String())
		return nil
	}

	w, ok := d.cfg.Manager.Focused()
	if !ok {
		logger.Debug("no focused managed window", "action", a.String())
		return nil
	}
	return d.dispatchFocused(a, w)
}

func (d *Dispatcher) dispatchFocused(a binding.Action, w window.Window) error {
	api := d.cfg.API
	switch a.Kind {
	case binding.CloseTile:
		return w.Close(api)
	case binding.IgnoreTile:
		return d.cfg.Manager.Unmanage(w.Handle)
	case binding.MinimizeTile:
		if err := w.Minimize(api); err != nil {
			return err
		}
		return d.cfg.Manager.Drop(w.Handle)
	case binding.MoveToWorkspace:
		return d.cfg.Tiler.MoveToWorkspace(w.Handle, a.ID, d.cfg.Store.Snapshot())
	case binding.ToggleFloatingMode:
		return d.toggleFloating(w)
	case binding.ToggleFullscreen:
		d.cfg.Manager.registry.Update(w.Handle, func(rec *window.Window) { rec.Fullscreen = !rec.Fullscreen })
		return d.cfg.Manager.Reflow()
	case binding.Focus:
		next, ok := d.cfg.Tiler.Neighbour(w.Handle, a.Direction)
		if !ok {
			return nil
		}
		return api.SetForeground(next)
	case binding.Swap:
		next, ok := d.cfg.Tiler.Neighbour(w.Handle, a.Direction)
		if !ok {
			return nil
		}
		d.cfg.Manager.registry.Swap(w.Handle, next)
		return d.cfg.Manager.Reflow()
	}
	return fmt.Errorf("%w: %s", binding.ErrUnknownAction, a.Kind)
}

// toggleFloating pins a floating window above the tiles and puts it back
// into the grid when it stops floating.
func (d *Dispatcher) toggleFloating(w window.Window) error {
	floating := !w.Floating
	d.cfg.Manager.registry.Update(w.Handle, func(rec *window.Window) { rec.Floating = floating })

	var err error
	if floating {
		err = w.ToForeground(d.cfg.API, true)
	} else {
		err = w.RemoveTopmost(d.cfg.API)
	}
	if err != nil {
		return err
	}
	return d.cfg.Manager.Reflow()
}

// alterConfig treats unknown fields as a reported no-op and reflows after a
// successful change while work mode is on.
func (d *Dispatcher) alterConfig(err error) error {
	if errors.Is(err, config.ErrUnknownField) {
		return nil
	}
	if err != nil {
		return err
	}
	if d.cfg.WorkMode != nil && d.cfg.WorkMode.Enabled() {
		return d.cfg.Manager.Reflow()
	}
	return nil
}
