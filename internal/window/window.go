// Package window holds the per-window record the manager keeps for every
// window it manages, and the registry of those records.
package window

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/rules"
	"github.com/1broseidon/wintile/internal/style"
)

var (
	// ErrAlreadyManaged is returned when original state would be captured twice.
	ErrAlreadyManaged = errors.New("window already managed")
	// ErrNotManaged is returned when a restore is attempted without a capture.
	ErrNotManaged = errors.New("window not managed")
)

// Original is the state captured when management begins. Reset restores it.
type Original struct {
	Style     style.Style
	Rect      platform.Rect
	Maximized bool
	Visible   bool
}

// Window is a plain record: callers copy it freely. Mutating methods change
// only the in-memory copy unless they take a platform.Backend.
type Window struct {
	Handle      platform.Handle
	Title       string
	ProcessName string
	Rule        rules.Rule
	Workspace   int32
	Floating    bool
	Fullscreen  bool

	// Hidden is set while the window is unmapped for an inactive workspace.
	Hidden bool

	// Style and ExStyle are the styles the manager wants the window to have.
	Style   style.Style
	ExStyle style.ExStyle

	original *Original
}

// New returns an unmanaged record for h.
func New(h platform.Handle) Window {
	return Window{Handle: h, Rule: rules.Default(), Workspace: -1}
}

// Managed reports whether original state has been captured.
func (w *Window) Managed() bool { return w.original != nil }

// Original returns the captured state.
func (w *Window) Original() (Original, bool) {
	if w.original == nil {
		return Original{}, false
	}
	return *w.original, true
}

// Manage captures the window's current style, rectangle and maximized state.
// It happens at most once per record.
func (w *Window) Manage(api platform.Backend) error {
	if w.original != nil {
		return fmt.Errorf("%s: %w", w.Handle, ErrAlreadyManaged)
	}
	st, err := api.Style(w.Handle)
	if err != nil {
		return fmt.Errorf("read style: %w", err)
	}
	ex, err := api.ExStyle(w.Handle)
	if err != nil {
		return fmt.Errorf("read extended style: %w", err)
	}
	rect, err := api.WindowRect(w.Handle)
	if err != nil {
		return fmt.Errorf("read window rect: %w", err)
	}

	w.original = &Original{
		Style:     st,
		Rect:      rect,
		Maximized: st.Has(style.Maximize),
		Visible:   st.Has(style.Visible),
	}
	w.Style = st
	w.ExStyle = ex
	return nil
}

// RemoveTitleBar strips caption and sizing frame from the in-memory style,
// except for browsers that draw their own chrome, and adds a thin border when
// useBorder is set. Applying it twice yields the same style.
func (w *Window) RemoveTitleBar(useBorder bool) {
	if !w.Rule.Chromium && !w.Rule.Firefox {
		w.Style.Remove(style.Caption)
		w.Style.Remove(style.ThickFrame)
	}
	if useBorder {
		w.Style.Insert(style.Border)
	}
}

// UpdateStyle pushes the in-memory style to the platform.
func (w *Window) UpdateStyle(api platform.Backend) error {
	return api.SetStyle(w.Handle, w.Style)
}

// UpdateExStyle pushes the in-memory extended style to the platform.
func (w *Window) UpdateExStyle(api platform.Backend) error {
	return api.SetExStyle(w.Handle, w.ExStyle)
}

// Reset restores the captured style and position, shows the window again if
// it was hidden for a workspace, then re-maximizes it if it was maximized
// when captured. The style goes first since the position depends on it; the
// first failed step ends the restore.
func (w *Window) Reset(api platform.Backend) error {
	orig, ok := w.Original()
	if !ok {
		return fmt.Errorf("%s: %w", w.Handle, ErrNotManaged)
	}
	w.Style = orig.Style

	if err := w.UpdateStyle(api); err != nil {
		return fmt.Errorf("restore style: %w", err)
	}
	if err := api.SetWindowPos(w.Handle, platform.InsertTop, orig.Rect, 0); err != nil {
		return fmt.Errorf("restore position: %w", err)
	}
	if orig.Visible && w.Hidden {
		if err := w.Show(api); err != nil {
			return fmt.Errorf("restore visibility: %w", err)
		}
	}
	if orig.Maximized {
		if err := w.Maximize(api); err != nil {
			return fmt.Errorf("restore maximized: %w", err)
		}
	}
	return nil
}

// Show makes the window visible and clears Hidden.
func (w *Window) Show(api platform.Backend) error {
	if err := api.Show(w.Handle, platform.ShowShow); err != nil {
		return err
	}
	w.Hidden = false
	return nil
}

// Hide hides the window and sets Hidden.
func (w *Window) Hide(api platform.Backend) error {
	if err := api.Show(w.Handle, platform.ShowHide); err != nil {
		return err
	}
	w.Hidden = true
	return nil
}

// Maximize sends the maximize system command.
func (w *Window) Maximize(api platform.Backend) error {
	return api.SysCommand(w.Handle, platform.SysMaximize)
}

// Minimize sends the minimize system command.
func (w *Window) Minimize(api platform.Backend) error {
	return api.SysCommand(w.Handle, platform.SysMinimize)
}

// Restore sends the restore system command.
func (w *Window) Restore(api platform.Backend) error {
	return api.SysCommand(w.Handle, platform.SysRestore)
}

// Close asks the window to close.
func (w *Window) Close(api platform.Backend) error { return api.Close(w.Handle) }

// Redraw asks the window to repaint.
func (w *Window) Redraw(api platform.Backend) error { return api.Redraw(w.Handle) }

// Focus brings the window to the foreground.
func (w *Window) Focus(api platform.Backend) error { return api.SetForeground(w.Handle) }

// ToForeground raises the window, pinning it above others when topmost is set.
func (w *Window) ToForeground(api platform.Backend, topmost bool) error {
	after := platform.InsertTop
	if topmost {
		after = platform.InsertTopmost
	}
	return api.SetWindowPos(w.Handle, after, platform.Rect{}, platform.PosNoMove|platform.PosNoSize)
}

// RemoveTopmost drops the window out of the topmost band.
func (w *Window) RemoveTopmost(api platform.Backend) error {
	return api.SetWindowPos(w.Handle, platform.InsertNoTopmost, platform.Rect{}, platform.PosNoMove|platform.PosNoSize)
}

// ClientRect returns the window's client area.
func (w *Window) ClientRect(api platform.Backend) (platform.Rect, error) {
	return api.ClientRect(w.Handle)
}

// Parent returns the parent window.
func (w *Window) Parent(api platform.Backend) (platform.Handle, error) {
	return api.Parent(w.Handle)
}

// ProcessPath returns the executable path of the owning process.
func (w *Window) ProcessPath(api platform.Backend) (string, error) {
	return api.ProcessPath(w.Handle)
}

// LookupProcessName returns the last path segment of the executable path.
func (w *Window) LookupProcessName(api platform.Backend) (string, error) {
	path, err := w.ProcessPath(api)
	if err != nil {
		return "", err
	}
	return BaseName(path), nil
}

// BaseName returns the last segment of a Windows or POSIX path.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
