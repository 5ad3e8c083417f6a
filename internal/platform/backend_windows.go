//go:build windows

package platform

import (
	"errors"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/wintile/internal/style"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetWindowLongW         = user32.NewProc("GetWindowLongW")
	procSetWindowLongW         = user32.NewProc("SetWindowLongW")
	procGetWindowRect          = user32.NewProc("GetWindowRect")
	procGetClientRect          = user32.NewProc("GetClientRect")
	procSetWindowPos           = user32.NewProc("SetWindowPos")
	procAdjustWindowRectEx     = user32.NewProc("AdjustWindowRectEx")
	procGetSystemMetrics       = user32.NewProc("GetSystemMetrics")
	procGetSystemMetricsForDpi = user32.NewProc("GetSystemMetricsForDpi")
	procGetDpiForSystem        = user32.NewProc("GetDpiForSystem")
	procShowWindow             = user32.NewProc("ShowWindow")
	procSendMessageW           = user32.NewProc("SendMessageW")
	procSetForegroundWindow    = user32.NewProc("SetForegroundWindow")
	procGetForegroundWindow    = user32.NewProc("GetForegroundWindow")
	procGetParent              = user32.NewProc("GetParent")
	procGetWindow              = user32.NewProc("GetWindow")
	procGetWindowTextLengthW   = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW         = user32.NewProc("GetWindowTextW")
	procFindWindowW            = user32.NewProc("FindWindowW")
	procFindWindowExW          = user32.NewProc("FindWindowExW")
	procSystemParametersInfoW  = user32.NewProc("SystemParametersInfoW")
	procSetLastError           = kernel32.NewProc("SetLastError")
)

const (
	gwlStyle   int32 = -16
	gwlExStyle int32 = -20

	wmClose      = 0x0010
	wmPaint      = 0x000F
	wmSysCommand = 0x0112

	gwOwner        = 4
	smCxScreen     = 0
	smCyScreen     = 1
	spiGetWorkArea = 0x0030
)

// WindowsBackend drives top-level windows through user32.
type WindowsBackend struct{}

var _ Backend = (*WindowsBackend)(nil)
var _ Taskbars = (*WindowsBackend)(nil)

// NewWindowsBackend returns the Win32 backend.
func NewWindowsBackend() *WindowsBackend { return &WindowsBackend{} }

// NewNativeBackend returns the backend for the running platform.
func NewNativeBackend() (Backend, func(), error) {
	return NewWindowsBackend(), func() {}, nil
}

func callError(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &CallError{Op: op, Code: uint32(errno)}
	}
	return &CallError{Op: op}
}

func failed(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno != 0
}

func clearLastError() {
	procSetLastError.Call(0)
}

func hwnd(h Handle) uintptr { return h.raw }

func (b *WindowsBackend) getLong(h Handle, idx int32) (int32, error) {
	clearLastError()
	r, _, err := procGetWindowLongW.Call(hwnd(h), uintptr(idx))
	if r == 0 && failed(err) {
		return 0, callError("GetWindowLongW", err)
	}
	return int32(r), nil
}

func (b *WindowsBackend) setLong(h Handle, idx int32, v int32) error {
	clearLastError()
	r, _, err := procSetWindowLongW.Call(hwnd(h), uintptr(idx), uintptr(v))
	if r == 0 && failed(err) {
		return callError("SetWindowLongW", err)
	}
	return nil
}

func (b *WindowsBackend) Style(h Handle) (style.Style, error) {
	v, err := b.getLong(h, gwlStyle)
	return style.FromBits(v), err
}

func (b *WindowsBackend) ExStyle(h Handle) (style.ExStyle, error) {
	v, err := b.getLong(h, gwlExStyle)
	return style.ExFromBits(v), err
}

func (b *WindowsBackend) SetStyle(h Handle, s style.Style) error {
	return b.setLong(h, gwlStyle, s.Bits())
}

func (b *WindowsBackend) SetExStyle(h Handle, s style.ExStyle) error {
	return b.setLong(h, gwlExStyle, s.Bits())
}

func fromNative(r windows.Rect) Rect {
	return Rect{Left: int(r.Left), Top: int(r.Top), Right: int(r.Right), Bottom: int(r.Bottom)}
}

func toNative(r Rect) windows.Rect {
	return windows.Rect{Left: int32(r.Left), Top: int32(r.Top), Right: int32(r.Right), Bottom: int32(r.Bottom)}
}

func (b *WindowsBackend) WindowRect(h Handle) (Rect, error) {
	var r windows.Rect
	ok, _, err := procGetWindowRect.Call(hwnd(h), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return Rect{}, callError("GetWindowRect", err)
	}
	return fromNative(r), nil
}

func (b *WindowsBackend) ClientRect(h Handle) (Rect, error) {
	var r windows.Rect
	ok, _, err := procGetClientRect.Call(hwnd(h), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return Rect{}, callError("GetClientRect", err)
	}
	return fromNative(r), nil
}

func insertAfterHandle(after InsertAfter) uintptr {
	switch after {
	case InsertBottom:
		return 1
	case InsertTopmost:
		return ^uintptr(0) // HWND_TOPMOST (-1)
	case InsertNoTopmost:
		return ^uintptr(1) // HWND_NOTOPMOST (-2)
	default:
		return 0
	}
}

func (b *WindowsBackend) SetWindowPos(h Handle, after InsertAfter, r Rect, flags PosFlag) error {
	ok, _, err := procSetWindowPos.Call(
		hwnd(h),
		insertAfterHandle(after),
		uintptr(r.Left),
		uintptr(r.Top),
		uintptr(r.Width()),
		uintptr(r.Height()),
		uintptr(flags),
	)
	if ok == 0 {
		return callError("SetWindowPos", err)
	}
	return nil
}

func (b *WindowsBackend) AdjustWindowRect(r Rect, s style.Style, ex style.ExStyle) (Rect, error) {
	native := toNative(r)
	ok, _, err := procAdjustWindowRectEx.Call(
		uintptr(unsafe.Pointer(&native)),
		uintptr(uint32(s)),
		0,
		uintptr(uint32(ex)),
	)
	if ok == 0 {
		return Rect{}, callError("AdjustWindowRectEx", err)
	}
	return fromNative(native), nil
}

func (b *WindowsBackend) SystemMetric(m Metric, dpi uint32) int {
	if procGetSystemMetricsForDpi.Find() == nil {
		r, _, _ := procGetSystemMetricsForDpi.Call(uintptr(m), uintptr(dpi))
		return int(int32(r))
	}
	r, _, _ := procGetSystemMetrics.Call(uintptr(m))
	return int(int32(r)) * int(dpi) / DefaultDPI
}

func (b *WindowsBackend) Show(h Handle, cmd ShowCmd) error {
	procShowWindow.Call(hwnd(h), uintptr(cmd))
	return nil
}

func (b *WindowsBackend) send(op string, h Handle, msg, wparam uintptr) error {
	clearLastError()
	_, _, err := procSendMessageW.Call(hwnd(h), msg, wparam, 0)
	if failed(err) {
		return callError(op, err)
	}
	return nil
}

func (b *WindowsBackend) SysCommand(h Handle, cmd SysCommand) error {
	return b.send("SendMessageW(WM_SYSCOMMAND)", h, wmSysCommand, uintptr(cmd))
}

func (b *WindowsBackend) Close(h Handle) error {
	return b.send("SendMessageW(WM_CLOSE)", h, wmClose, 0)
}

func (b *WindowsBackend) Redraw(h Handle) error {
	return b.send("SendMessageW(WM_PAINT)", h, wmPaint, 0)
}

func (b *WindowsBackend) SetForeground(h Handle) error {
	ok, _, err := procSetForegroundWindow.Call(hwnd(h))
	if ok == 0 {
		return callError("SetForegroundWindow", err)
	}
	return nil
}

func (b *WindowsBackend) Foreground() (Handle, error) {
	r, _, err := procGetForegroundWindow.Call()
	if r == 0 {
		return Handle{}, callError("GetForegroundWindow", err)
	}
	return HandleFromRaw(r), nil
}

func (b *WindowsBackend) Parent(h Handle) (Handle, error) {
	r, _, err := procGetParent.Call(hwnd(h))
	if r == 0 {
		return Handle{}, callError("GetParent", err)
	}
	return HandleFromRaw(r), nil
}

func (b *WindowsBackend) Title(h Handle) (string, error) {
	clearLastError()
	n, _, err := procGetWindowTextLengthW.Call(hwnd(h))
	if n == 0 {
		if failed(err) {
			return "", callError("GetWindowTextLengthW", err)
		}
		return "", nil
	}
	buf := make([]uint16, n+1)
	r, _, err := procGetWindowTextW.Call(hwnd(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 && failed(err) {
		return "", callError("GetWindowTextW", err)
	}
	return windows.UTF16ToString(buf[:r]), nil
}

func (b *WindowsBackend) ProcessPath(h Handle) (string, error) {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd(h)), &pid); err != nil {
		return "", callError("GetWindowThreadProcessId", err)
	}
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", callError("OpenProcess", err)
	}
	defer windows.CloseHandle(proc)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(proc, 0, &buf[0], &size); err != nil {
		return "", callError("QueryFullProcessImageName", err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}

var (
	enumMu      sync.Mutex
	enumResult  []Handle
	enumCallback = windows.NewCallback(func(h windows.HWND, _ uintptr) uintptr {
		enumResult = append(enumResult, HandleFromRaw(uintptr(h)))
		return 1
	})
)

// TopLevelWindows lists visible, unowned, titled windows that are not tool windows.
func (b *WindowsBackend) TopLevelWindows() ([]Handle, error) {
	enumMu.Lock()
	enumResult = enumResult[:0]
	err := windows.EnumWindows(enumCallback, nil)
	all := append([]Handle(nil), enumResult...)
	enumMu.Unlock()
	if err != nil {
		return nil, callError("EnumWindows", err)
	}

	out := make([]Handle, 0, len(all))
	for _, h := range all {
		if !windows.IsWindowVisible(windows.HWND(h.raw)) {
			continue
		}
		if owner, _, _ := procGetWindow.Call(h.raw, gwOwner); owner != 0 {
			continue
		}
		if ex, err := b.ExStyle(h); err != nil || ex.Has(style.ToolWindow) {
			continue
		}
		if title, err := b.Title(h); err != nil || title == "" {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (b *WindowsBackend) PrimaryDisplay() (Display, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	bounds := Rect{Right: int(int32(w)), Bottom: int(int32(h))}

	var work windows.Rect
	ok, _, err := procSystemParametersInfoW.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&work)), 0)
	if ok == 0 {
		return Display{}, callError("SystemParametersInfoW", err)
	}

	dpi := uint32(DefaultDPI)
	if procGetDpiForSystem.Find() == nil {
		if r, _, _ := procGetDpiForSystem.Call(); r != 0 {
			dpi = uint32(r)
		}
	}
	return Display{Name: "primary", Bounds: bounds, Usable: fromNative(work), DPI: dpi}, nil
}

func (b *WindowsBackend) trays() []uintptr {
	primary, _ := windows.UTF16PtrFromString("Shell_TrayWnd")
	secondary, _ := windows.UTF16PtrFromString("Shell_SecondaryTrayWnd")

	var out []uintptr
	if r, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(primary)), 0); r != 0 {
		out = append(out, r)
	}
	var prev uintptr
	for {
		r, _, _ := procFindWindowExW.Call(0, prev, uintptr(unsafe.Pointer(secondary)), 0)
		if r == 0 {
			break
		}
		out = append(out, r)
		prev = r
	}
	return out
}

func (b *WindowsBackend) HideTaskbars() error {
	for _, t := range b.trays() {
		procShowWindow.Call(t, uintptr(ShowHide))
	}
	return nil
}

func (b *WindowsBackend) ShowTaskbars() error {
	for _, t := range b.trays() {
		procShowWindow.Call(t, uintptr(ShowShow))
	}
	return nil
}
