package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/wintile/internal/style"
)

// Handle identifies a top-level window. It is opaque: the only operations are
// comparison and conversion at the platform boundary.
type Handle struct {
	raw uintptr
}

// HandleFromRaw wraps a native window identifier.
func HandleFromRaw(raw uintptr) Handle { return Handle{raw: raw} }

// Raw returns the native identifier for platform calls.
func (h Handle) Raw() uintptr { return h.raw }

// IsZero reports whether h refers to no window.
func (h Handle) IsZero() bool { return h.raw == 0 }

func (h Handle) String() string { return fmt.Sprintf("0x%x", h.raw) }

// Rect is a rectangle in the platform's native left/top/right/bottom form.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// RectFromBounds builds a Rect from an origin and a size.
func RectFromBounds(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
	DPI    uint32
}

// DefaultDPI is the platform's unscaled DPI.
const DefaultDPI = 96

// Metric names a per-DPI system metric.
type Metric int

const (
	MetricCaptionHeight Metric = 4  // SM_CYCAPTION
	MetricFrameWidth    Metric = 32 // SM_CXFRAME
	MetricFrameHeight   Metric = 33 // SM_CYFRAME
)

// InsertAfter selects the z-order slot passed to SetWindowPos.
type InsertAfter int

const (
	InsertTop InsertAfter = iota
	InsertBottom
	InsertTopmost
	InsertNoTopmost
)

// PosFlag modifies SetWindowPos.
type PosFlag uint32

const (
	PosNoSize         PosFlag = 0x0001
	PosNoMove         PosFlag = 0x0002
	PosNoZOrder       PosFlag = 0x0004
	PosNoActivate     PosFlag = 0x0010
	PosFrameChanged   PosFlag = 0x0020
	PosShowWindow     PosFlag = 0x0040
	PosNoOwnerZOrder  PosFlag = 0x0200
	PosAsyncWindowPos PosFlag = 0x4000
)

// ShowCmd is the command passed to ShowWindow.
type ShowCmd int

const (
	ShowHide ShowCmd = 0
	ShowShow ShowCmd = 5
)

// SysCommand is a WM_SYSCOMMAND request.
type SysCommand uint32

const (
	SysMinimize SysCommand = 0xF020
	SysMaximize SysCommand = 0xF030
	SysRestore  SysCommand = 0xF120
)

// ErrCallFailed matches every CallError via errors.Is.
var ErrCallFailed = errors.New("platform call failed")

// ErrUnsupported is returned where no native backend exists.
var ErrUnsupported = errors.New("platform not supported")

// CallError reports a failed platform call together with the platform's
// last-error code.
type CallError struct {
	Op   string
	Code uint32
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed (code %d)", e.Op, e.Code)
}

func (e *CallError) Is(target error) bool { return target == ErrCallFailed }

// Backend is the platform window API the window manager drives. Every call may
// fail with a *CallError.
type Backend interface {
	Style(h Handle) (style.Style, error)
	ExStyle(h Handle) (style.ExStyle, error)
	SetStyle(h Handle, s style.Style) error
	SetExStyle(h Handle, s style.ExStyle) error

	WindowRect(h Handle) (Rect, error)
	ClientRect(h Handle) (Rect, error)
	SetWindowPos(h Handle, after InsertAfter, r Rect, flags PosFlag) error
	AdjustWindowRect(r Rect, s style.Style, ex style.ExStyle) (Rect, error)
	SystemMetric(m Metric, dpi uint32) int

	Show(h Handle, cmd ShowCmd) error
	SysCommand(h Handle, cmd SysCommand) error
	Close(h Handle) error
	Redraw(h Handle) error
	SetForeground(h Handle) error
	Foreground() (Handle, error)
	Parent(h Handle) (Handle, error)

	Title(h Handle) (string, error)
	ProcessPath(h Handle) (string, error)

	TopLevelWindows() ([]Handle, error)
	PrimaryDisplay() (Display, error)
}

// Taskbars hides and shows the platform's docked task bars.
type Taskbars interface {
	HideTaskbars() error
	ShowTaskbars() error
}
