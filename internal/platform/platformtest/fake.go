// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/style"
)

// Window is the fake platform state of one top-level window.
type Window struct {
	Style     style.Style
	ExStyle   style.ExStyle
	Rect      platform.Rect
	Title     string
	Path      string
	Parent    platform.Handle
	Maximized bool
	Minimized bool
	Closed    bool
	Redraws   int
}

// Fake is a scripted platform backend that records every mutating call.
type Fake struct {
	mu         sync.Mutex
	windows    map[platform.Handle]*Window
	order      []platform.Handle
	foreground platform.Handle
	calls      []string
	failures   map[string]uint32

	Metrics   map[platform.Metric]int
	Display   platform.Display
	AdjustFn  func(platform.Rect, style.Style, style.ExStyle) platform.Rect
	Taskbars  bool
	TaskbarOp []string
}

var _ platform.Backend = (*Fake)(nil)
var _ platform.Taskbars = (*Fake)(nil)

// New returns a Fake with a 1920x1080 display and 4/4/23 metrics.
func New() *Fake {
	return &Fake{
		windows:  make(map[platform.Handle]*Window),
		failures: make(map[string]uint32),
		Metrics: map[platform.Metric]int{
			platform.MetricFrameWidth:    4,
			platform.MetricFrameHeight:   4,
			platform.MetricCaptionHeight: 23,
		},
		Display: platform.Display{
			ID:     0,
			Name:   "fake",
			Bounds: platform.Rect{Right: 1920, Bottom: 1080},
			Usable: platform.Rect{Right: 1920, Bottom: 1080},
			DPI:    platform.DefaultDPI,
		},
		Taskbars: true,
	}
}

// Add registers a window and returns its handle.
func (f *Fake) Add(raw uintptr, w Window) platform.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := platform.HandleFromRaw(raw)
	cp := w
	if _, ok := f.windows[h]; !ok {
		f.order = append(f.order, h)
	}
	f.windows[h] = &cp
	return h
}

// Remove makes a window disappear, as if destroyed.
func (f *Fake) Remove(h platform.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, h)
	for i, o := range f.order {
		if o == h {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of a window's fake state.
func (f *Fake) Get(h platform.Handle) Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[h]; ok {
		return *w
	}
	return Window{}
}

// SetForegroundHandle changes the focused window without recording a call.
func (f *Fake) SetForegroundHandle(h platform.Handle) {
	f.mu.Lock()
	f.foreground = h
	f.mu.Unlock()
}

// Fail makes every later call of op fail with code.
func (f *Fake) Fail(op string, code uint32) {
	f.mu.Lock()
	f.failures[op] = code
	f.mu.Unlock()
}

// Calls returns the recorded call log.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// ResetCalls clears the call log.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *Fake) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *Fake) lookup(op string, h platform.Handle) (*Window, error) {
	if code, ok := f.failures[op]; ok {
		return nil, &platform.CallError{Op: op, Code: code}
	}
	w, ok := f.windows[h]
	if !ok {
		return nil, &platform.CallError{Op: op, Code: 1400} // ERROR_INVALID_WINDOW_HANDLE
	}
	return w, nil
}

func (f *Fake) Style(h platform.Handle) (style.Style, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetWindowLong", h)
	if err != nil {
		return 0, err
	}
	return w.Style, nil
}

func (f *Fake) ExStyle(h platform.Handle) (style.ExStyle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetWindowLong", h)
	if err != nil {
		return 0, err
	}
	return w.ExStyle, nil
}

func (f *Fake) SetStyle(h platform.Handle, s style.Style) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SetWindowLong", h)
	if err != nil {
		return err
	}
	f.record("SetStyle %s %s", h, s)
	// Visibility only changes through Show, as on the real platforms.
	w.Style = s&^style.Visible | w.Style&style.Visible
	return nil
}

func (f *Fake) SetExStyle(h platform.Handle, s style.ExStyle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SetWindowLong", h)
	if err != nil {
		return err
	}
	f.record("SetExStyle %s %s", h, s)
	w.ExStyle = s
	return nil
}

func (f *Fake) WindowRect(h platform.Handle) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetWindowRect", h)
	if err != nil {
		return platform.Rect{}, err
	}
	return w.Rect, nil
}

func (f *Fake) ClientRect(h platform.Handle) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetClientRect", h)
	if err != nil {
		return platform.Rect{}, err
	}
	return platform.Rect{Right: w.Rect.Width(), Bottom: w.Rect.Height()}, nil
}

func (f *Fake) SetWindowPos(h platform.Handle, after platform.InsertAfter, r platform.Rect, flags platform.PosFlag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SetWindowPos", h)
	if err != nil {
		return err
	}
	f.record("SetWindowPos %s %d %v 0x%x", h, after, r, uint32(flags))
	switch after {
	case platform.InsertTopmost:
		w.ExStyle.Insert(style.Topmost)
	case platform.InsertNoTopmost:
		w.ExStyle.Remove(style.Topmost)
	}
	if flags&platform.PosNoMove == 0 {
		width, height := w.Rect.Width(), w.Rect.Height()
		w.Rect.Left, w.Rect.Top = r.Left, r.Top
		w.Rect.Right, w.Rect.Bottom = r.Left+width, r.Top+height
	}
	if flags&platform.PosNoSize == 0 {
		w.Rect.Right = w.Rect.Left + r.Width()
		w.Rect.Bottom = w.Rect.Top + r.Height()
	}
	return nil
}

func (f *Fake) AdjustWindowRect(r platform.Rect, s style.Style, ex style.ExStyle) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.failures["AdjustWindowRectEx"]; ok {
		return platform.Rect{}, &platform.CallError{Op: "AdjustWindowRectEx", Code: code}
	}
	if f.AdjustFn != nil {
		return f.AdjustFn(r, s, ex), nil
	}
	return r, nil
}

func (f *Fake) SystemMetric(m platform.Metric, dpi uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Metrics[m] * int(dpi) / platform.DefaultDPI
}

func (f *Fake) Show(h platform.Handle, cmd platform.ShowCmd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("ShowWindow", h)
	if err != nil {
		return err
	}
	f.record("Show %s %d", h, cmd)
	if cmd == platform.ShowHide {
		w.Style.Remove(style.Visible)
	} else {
		w.Style.Insert(style.Visible)
	}
	return nil
}

func (f *Fake) SysCommand(h platform.Handle, cmd platform.SysCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SendMessage", h)
	if err != nil {
		return err
	}
	f.record("SysCommand %s 0x%x", h, uint32(cmd))
	switch cmd {
	case platform.SysMaximize:
		w.Maximized, w.Minimized = true, false
		w.Style.Insert(style.Maximize)
	case platform.SysMinimize:
		w.Minimized = true
	case platform.SysRestore:
		w.Maximized, w.Minimized = false, false
		w.Style.Remove(style.Maximize)
	}
	return nil
}

func (f *Fake) Close(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SendMessage", h)
	if err != nil {
		return err
	}
	f.record("Close %s", h)
	w.Closed = true
	return nil
}

func (f *Fake) Redraw(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("SendMessage", h)
	if err != nil {
		return err
	}
	f.record("Redraw %s", h)
	w.Redraws++
	return nil
}

func (f *Fake) SetForeground(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.lookup("SetForegroundWindow", h); err != nil {
		return err
	}
	f.record("SetForeground %s", h)
	f.foreground = h
	return nil
}

func (f *Fake) Foreground() (platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.foreground.IsZero() {
		return platform.Handle{}, &platform.CallError{Op: "GetForegroundWindow"}
	}
	return f.foreground, nil
}

func (f *Fake) Parent(h platform.Handle) (platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetParent", h)
	if err != nil {
		return platform.Handle{}, err
	}
	if w.Parent.IsZero() {
		return platform.Handle{}, &platform.CallError{Op: "GetParent"}
	}
	return w.Parent, nil
}

func (f *Fake) Title(h platform.Handle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("GetWindowText", h)
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func (f *Fake) ProcessPath(h platform.Handle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.lookup("QueryFullProcessImageName", h)
	if err != nil {
		return "", err
	}
	if w.Path == "" {
		return "", &platform.CallError{Op: "QueryFullProcessImageName", Code: 5}
	}
	return w.Path, nil
}

func (f *Fake) TopLevelWindows() ([]platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.failures["EnumWindows"]; ok {
		return nil, &platform.CallError{Op: "EnumWindows", Code: code}
	}
	return append([]platform.Handle(nil), f.order...), nil
}

func (f *Fake) PrimaryDisplay() (platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Display, nil
}

func (f *Fake) HideTaskbars() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TaskbarOp = append(f.TaskbarOp, "hide")
	f.Taskbars = false
	return nil
}

func (f *Fake) ShowTaskbars() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TaskbarOp = append(f.TaskbarOp, "show")
	f.Taskbars = true
	return nil
}
