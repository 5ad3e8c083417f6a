package window

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
)

// ErrDuplicate is returned when a handle is registered twice.
var ErrDuplicate = errors.New("window already registered")

// Registry tracks managed windows in the order they were added.
type Registry struct {
	mu      sync.Mutex
	windows map[platform.Handle]*Window
	order   []platform.Handle
	logger  *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		windows: make(map[platform.Handle]*Window),
		logger:  logger,
	}
}

// Insert adds w.
func (r *Registry) Insert(w Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[w.Handle]; ok {
		return fmt.Errorf("%s: %w", w.Handle, ErrDuplicate)
	}
	cp := w
	r.windows[w.Handle] = &cp
	r.order = append(r.order, w.Handle)
	return nil
}

// Contains reports whether h is tracked.
func (r *Registry) Contains(h platform.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.windows[h]
	return ok
}

// Get returns a copy of the record for h.
func (r *Registry) Get(h platform.Handle) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[h]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Update runs fn on the stored record for h.
func (r *Registry) Update(h platform.Handle, fn func(*Window)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[h]
	if !ok {
		return false
	}
	fn(w)
	return true
}

// Swap exchanges the positions of two windows in the registry order.
func (r *Registry) Swap(a, b platform.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ia, ib := -1, -1
	for i, h := range r.order {
		switch h {
		case a:
			ia = i
		case b:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return false
	}
	r.order[ia], r.order[ib] = r.order[ib], r.order[ia]
	return true
}

// Remove drops h without touching the platform window.
func (r *Registry) Remove(h platform.Handle) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(h)
}

func (r *Registry) removeLocked(h platform.Handle) (Window, bool) {
	w, ok := r.windows[h]
	if !ok {
		return Window{}, false
	}
	delete(r.windows, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *w, true
}

// All returns copies of every record in insertion order.
func (r *Registry) All() []Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Window, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, *r.windows[h])
	}
	return out
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Unmanage drops h and restores its original state.
func (r *Registry) Unmanage(api platform.Backend, h platform.Handle) error {
	r.mu.Lock()
	w, ok := r.removeLocked(h)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", h, ErrNotManaged)
	}
	return w.Reset(api)
}

// UnmanageAll restores every tracked window and empties the registry. The
// registry stays locked for the whole pass so no window is added midway.
func (r *Registry) UnmanageAll(api platform.Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, h := range r.order {
		w := r.windows[h]
		if err := w.Reset(api); err != nil {
			r.logger.Warn("failed to restore window", "window", h.String(), "title", w.Title, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h, err))
		}
	}
	r.windows = make(map[platform.Handle]*Window)
	r.order = nil
	return errors.Join(errs...)
}
