package tiling

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/geometry"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/window"
)

// SettingsFrom extracts the geometry settings from a configuration.
func SettingsFrom(cfg *config.Config) geometry.Settings {
	return geometry.Settings{
		RemoveTitleBar: cfg.RemoveTitleBar,
		UseBorder:      cfg.UseBorder,
		DisplayAppBar:  cfg.DisplayAppBar,
		AppBarHeight:   int(cfg.AppBarHeight),
	}
}

// Tiler lays out the managed windows of the active workspace in a grid and
// handles switching between workspaces.
type Tiler struct {
	mu       sync.Mutex
	api      platform.Backend
	registry *window.Registry
	logger   *slog.Logger
	active   int32
}

// NewTiler returns a tiler showing workspace first.
func NewTiler(api platform.Backend, registry *window.Registry, first int32, logger *slog.Logger) *Tiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tiler{api: api, registry: registry, logger: logger, active: first}
}

// ActiveWorkspace returns the workspace being shown.
func (t *Tiler) ActiveWorkspace() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Tiles returns the windows of workspace ws that take part in the grid, in
// registry order.
func (t *Tiler) Tiles(ws int32) []window.Window {
	var out []window.Window
	for _, w := range t.registry.All() {
		if w.Workspace == ws && !w.Floating && !w.Fullscreen {
			out = append(out, w)
		}
	}
	return out
}

// Reflow moves every window of the active workspace to its tile. Failures on
// one window do not stop the others.
func (t *Tiler) Reflow(cfg *config.Config) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reflowLocked(cfg)
}

func (t *Tiler) reflowLocked(cfg *config.Config) error {
	display, err := t.api.PrimaryDisplay()
	if err != nil {
		return fmt.Errorf("query display: %w", err)
	}

	settings := SettingsFrom(cfg)
	area := WorkArea(display, int(cfg.Padding), settings)

	var errs []error
	for _, w := range t.registry.All() {
		if w.Workspace == t.active && w.Fullscreen {
			if err := t.api.SetWindowPos(w.Handle, platform.InsertTop, display.Bounds, 0); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", w.Handle, err))
			}
		}
	}

	tiles := t.Tiles(t.active)
	positions := CalculatePositions(len(tiles), area, int(cfg.Margin))
	t.logger.Debug("reflow", "workspace", t.active, "tiles", len(tiles), "area", fmt.Sprintf("%dx%d+%d+%d", area.Width, area.Height, area.X, area.Y))

	for i, w := range tiles {
		rect, err := geometry.WindowRect(t.api, display, w.Rule, settings, positions[i], w.Style, w.ExStyle)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Handle, err))
			continue
		}
		if err := t.api.SetWindowPos(w.Handle, platform.InsertTop, rect, platform.PosNoZOrder); err != nil {
			t.logger.Warn("failed to place window", "window", w.Handle.String(), "title", w.Title, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", w.Handle, err))
		}
	}
	return errors.Join(errs...)
}

// SetWorkspace hides the windows of the current workspace, shows those of
// id and lays them out.
func (t *Tiler) SetWorkspace(id int32, cfg *config.Config) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == t.active {
		return nil
	}

	var errs []error
	for _, w := range t.registry.All() {
		var err error
		switch w.Workspace {
		case t.active:
			err = w.Hide(t.api)
		case id:
			err = w.Show(t.api)
		default:
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.registry.Update(w.Handle, func(rec *window.Window) { rec.Hidden = w.Hidden })
	}
	t.logger.Info("changed workspace", "from", t.active, "to", id)
	t.active = id

	errs = append(errs, t.reflowLocked(cfg))
	return errors.Join(errs...)
}

// MoveToWorkspace reassigns h to workspace id, hiding it if id is not shown.
func (t *Tiler) MoveToWorkspace(h platform.Handle, id int32, cfg *config.Config) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var w window.Window
	ok := t.registry.Update(h, func(rec *window.Window) {
		rec.Workspace = id
		w = *rec
	})
	if !ok {
		return fmt.Errorf("%s: %w", h, window.ErrNotManaged)
	}
	if id != t.active {
		if err := w.Hide(t.api); err != nil {
			return err
		}
		t.registry.Update(h, func(rec *window.Window) { rec.Hidden = true })
	}
	return t.reflowLocked(cfg)
}

// Neighbour returns the tile next to h on the active workspace.
func (t *Tiler) Neighbour(h platform.Handle, dir binding.Direction) (platform.Handle, bool) {
	tiles := t.Tiles(t.ActiveWorkspace())
	for i, w := range tiles {
		if w.Handle == h {
			if j := Neighbour(len(tiles), i, dir); j >= 0 {
				return tiles[j].Handle, true
			}
			return platform.Handle{}, false
		}
	}
	return platform.Handle{}, false
}
