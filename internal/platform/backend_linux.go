//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/wintile/internal/style"
	"github.com/1broseidon/wintile/internal/x11"
)

// LinuxBackend maps the window API onto an EWMH-compliant X11 window manager.
// Frames are drawn by the window manager outside the client, so frame metrics
// are zero and AdjustWindowRect is the identity.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)
var _ Taskbars = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// NewNativeBackend returns the backend for the running platform.
func NewNativeBackend() (Backend, func(), error) {
	b, err := NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, nil, err
	}
	return b, b.Disconnect, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// QuitEventLoop stops EventLoop.
func (b *LinuxBackend) QuitEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func xwin(h Handle) xproto.Window { return xproto.Window(h.raw) }

func xerr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", &CallError{Op: op}, err)
}

func (b *LinuxBackend) Style(h Handle) (style.Style, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	win := xwin(h)
	dec := conn.GetDecorations(win)

	s := style.Overlapped
	if dec.Title {
		s.Insert(style.Caption)
	}
	if dec.Border {
		s.Insert(style.Border)
	}
	if dec.Resize {
		s.Insert(style.ThickFrame | style.MaximizeBox)
	}
	if dec.Menu {
		s.Insert(style.SysMenu | style.MinimizeBox)
	}
	if conn.Viewable(win) {
		s.Insert(style.Visible)
	}
	states := conn.States(win)
	if states["_NET_WM_STATE_MAXIMIZED_HORZ"] && states["_NET_WM_STATE_MAXIMIZED_VERT"] {
		s.Insert(style.Maximize)
	}
	return s, nil
}

func (b *LinuxBackend) ExStyle(h Handle) (style.ExStyle, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	var ex style.ExStyle
	if conn.States(xwin(h))["_NET_WM_STATE_ABOVE"] {
		ex.Insert(style.Topmost)
	}
	if conn.IsUtility(xwin(h)) {
		ex.Insert(style.ToolWindow)
	}
	return ex, nil
}

func (b *LinuxBackend) SetStyle(h Handle, s style.Style) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	dec := x11.Decorations{
		Title:  s.Has(style.Caption),
		Border: s.Has(style.Border),
		Resize: s.Has(style.ThickFrame),
		Menu:   s.Has(style.SysMenu),
	}
	return xerr("SetDecorations", conn.SetDecorations(xwin(h), dec))
}

func (b *LinuxBackend) SetExStyle(h Handle, s style.ExStyle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return xerr("SetAbove", conn.SetAbove(xwin(h), s.Has(style.Topmost)))
}

func (b *LinuxBackend) WindowRect(h Handle) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	x, y, w, hgt, err := conn.Geometry(xwin(h))
	if err != nil {
		return Rect{}, xerr("GetGeometry", err)
	}
	return RectFromBounds(x, y, w, hgt), nil
}

func (b *LinuxBackend) ClientRect(h Handle) (Rect, error) {
	r, err := b.WindowRect(h)
	if err != nil {
		return Rect{}, err
	}
	return Rect{Right: r.Width(), Bottom: r.Height()}, nil
}

func (b *LinuxBackend) SetWindowPos(h Handle, after InsertAfter, r Rect, flags PosFlag) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xwin(h)

	if flags&PosNoZOrder == 0 {
		switch after {
		case InsertTopmost:
			err = conn.SetAbove(win, true)
		case InsertNoTopmost:
			err = conn.SetAbove(win, false)
		case InsertBottom:
			err = conn.Lower(win)
		default:
			err = conn.Raise(win)
		}
		if err != nil {
			return xerr("ConfigureWindow", err)
		}
	}

	if flags&PosNoMove != 0 && flags&PosNoSize != 0 {
		return nil
	}
	cur, err := b.WindowRect(h)
	if err != nil {
		return err
	}
	x, y, w, hgt := r.Left, r.Top, r.Width(), r.Height()
	if flags&PosNoMove != 0 {
		x, y = cur.Left, cur.Top
	}
	if flags&PosNoSize != 0 {
		w, hgt = cur.Width(), cur.Height()
	}
	return xerr("MoveResizeWindow", conn.MoveResizeWindow(win, x, y, w, hgt))
}

func (b *LinuxBackend) AdjustWindowRect(r Rect, _ style.Style, _ style.ExStyle) (Rect, error) {
	return r, nil
}

func (b *LinuxBackend) SystemMetric(Metric, uint32) int { return 0 }

func (b *LinuxBackend) Show(h Handle, cmd ShowCmd) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if cmd == ShowHide {
		return xerr("UnmapWindow", conn.Unmap(xwin(h)))
	}
	return xerr("MapWindow", conn.Map(xwin(h)))
}

func (b *LinuxBackend) SysCommand(h Handle, cmd SysCommand) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xwin(h)
	switch cmd {
	case SysMinimize:
		return xerr("WM_CHANGE_STATE", conn.Minimize(win))
	case SysMaximize:
		return xerr("_NET_WM_STATE", conn.SetMaximized(win, true))
	case SysRestore:
		if err := conn.Map(win); err != nil {
			return xerr("MapWindow", err)
		}
		return xerr("_NET_WM_STATE", conn.SetMaximized(win, false))
	}
	return &CallError{Op: fmt.Sprintf("SysCommand(0x%x)", uint32(cmd))}
}

func (b *LinuxBackend) Close(h Handle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return xerr("WM_DELETE_WINDOW", conn.CloseWindow(xwin(h)))
}

func (b *LinuxBackend) Redraw(h Handle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return xerr("ClearArea", conn.Expose(xwin(h)))
}

func (b *LinuxBackend) SetForeground(h Handle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return xerr("_NET_ACTIVE_WINDOW", conn.Focus(xwin(h)))
}

func (b *LinuxBackend) Foreground() (Handle, error) {
	conn, err := b.connection()
	if err != nil {
		return Handle{}, err
	}
	win, err := conn.ActiveWindow()
	if err != nil {
		return Handle{}, xerr("_NET_ACTIVE_WINDOW", err)
	}
	if win == 0 {
		return Handle{}, &CallError{Op: "_NET_ACTIVE_WINDOW"}
	}
	return HandleFromRaw(uintptr(win)), nil
}

func (b *LinuxBackend) Parent(h Handle) (Handle, error) {
	conn, err := b.connection()
	if err != nil {
		return Handle{}, err
	}
	parent, err := conn.Parent(xwin(h))
	if err != nil {
		return Handle{}, xerr("QueryTree", err)
	}
	if parent == 0 || parent == conn.Root {
		return Handle{}, &CallError{Op: "QueryTree"}
	}
	return HandleFromRaw(uintptr(parent)), nil
}

func (b *LinuxBackend) Title(h Handle) (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	return conn.Title(xwin(h)), nil
}

func (b *LinuxBackend) ProcessPath(h Handle) (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	path, err := conn.ExecutablePath(xwin(h))
	if err != nil {
		return "", xerr("_NET_WM_PID", err)
	}
	return path, nil
}

func (b *LinuxBackend) TopLevelWindows() ([]Handle, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.Clients()
	if err != nil {
		return nil, xerr("_NET_CLIENT_LIST", err)
	}
	out := make([]Handle, 0, len(clients))
	for _, win := range clients {
		out = append(out, HandleFromRaw(uintptr(win)))
	}
	return out, nil
}

func (b *LinuxBackend) PrimaryDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}
	s, err := conn.Screen()
	if err != nil {
		return Display{}, xerr("GetGeometry", err)
	}
	return Display{
		Name:   "root",
		Bounds: RectFromBounds(s.X, s.Y, s.Width, s.Height),
		Usable: RectFromBounds(s.WorkX, s.WorkY, s.WorkWidth, s.WorkHeight),
		DPI:    s.DPI,
	}, nil
}

func (b *LinuxBackend) HideTaskbars() error {
	return b.eachDock(func(conn *x11.Connection, win xproto.Window) error { return conn.Unmap(win) })
}

func (b *LinuxBackend) ShowTaskbars() error {
	return b.eachDock(func(conn *x11.Connection, win xproto.Window) error { return conn.Map(win) })
}

func (b *LinuxBackend) eachDock(fn func(*x11.Connection, xproto.Window) error) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	docks, err := conn.Docks()
	if err != nil {
		return xerr("QueryTree", err)
	}
	for _, win := range docks {
		if err := fn(conn, win); err != nil {
			return xerr("MapWindow", err)
		}
	}
	return nil
}
