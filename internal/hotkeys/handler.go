// Package hotkeys grabs the configured key chords on the X11 root window and
// hands the bound actions to a dispatcher.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/platform"
)

// DispatchFunc runs a bound action.
type DispatchFunc func(binding.Action)

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	mu       sync.Mutex
	xu       *xgbutil.XUtil
	root     xproto.Window
	dispatch DispatchFunc
	logger   *slog.Logger
	bound    int
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. Backends without an X11 connection
// return platform.ErrUnsupported.
func NewHandler(backend platform.Backend, dispatch DispatchFunc, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("global hotkeys: %w", platform.ErrUnsupported)
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:       xu,
		root:     accessor.RootWindow(),
		dispatch: dispatch,
		logger:   logger,
	}, nil
}

// Bind replaces every grabbed chord with the given table. A chord that
// cannot be grabbed is logged and skipped; the joined errors are returned.
func (h *Handler) Bind(bindings []binding.Keybinding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	h.bound = 0

	var errs []error
	for _, kb := range binding.Dedupe(bindings) {
		seq := KeySequence(kb.Chord)
		action := kb.Action
		err := keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
			h.logger.Debug("hotkey pressed", "key", seq, "action", action.String())
			h.dispatch(action)
		}).Connect(h.xu, h.root, seq, true)
		if err != nil {
			h.logger.Warn("failed to grab hotkey", "key", kb.Chord.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", kb.Chord, err))
			continue
		}
		h.bound++
	}
	h.logger.Info("hotkeys registered", "count", h.bound)
	return errors.Join(errs...)
}

// Bound returns how many chords are grabbed.
func (h *Handler) Bound() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

// Release drops every grab.
func (h *Handler) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	keybind.Detach(h.xu, h.root)
	h.bound = 0
}

var keysyms = map[string]string{
	"Enter":     "Return",
	"Space":     "space",
	"Tab":       "Tab",
	"Escape":    "Escape",
	"Backspace": "BackSpace",
	"Delete":    "Delete",
	"Left":      "Left",
	"Right":     "Right",
	"Up":        "Up",
	"Down":      "Down",
	"Plus":      "plus",
	"Minus":     "minus",
	"Home":      "Home",
	"End":       "End",
}

// KeySequence converts a chord into xgbutil's "Mod4-Shift-h" notation.
// Alt is Mod1 and Win is Mod4.
func KeySequence(c binding.Chord) string {
	var parts []string
	if c.Has(binding.ModWin) {
		parts = append(parts, "Mod4")
	}
	if c.Has(binding.ModAlt) {
		parts = append(parts, "Mod1")
	}
	if c.Has(binding.ModControl) {
		parts = append(parts, "Control")
	}
	if c.Has(binding.ModShift) {
		parts = append(parts, "Shift")
	}

	key := c.Key
	switch {
	case keysyms[key] != "":
		key = keysyms[key]
	case len(key) == 1:
		key = strings.ToLower(key)
	}
	return strings.Join(append(parts, key), "-")
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
