package x11

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateAbove    = "_NET_WM_STATE_ABOVE"
	stateMaxHorz  = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert  = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateHidden   = "_NET_WM_STATE_HIDDEN"
	stateRemove   = 0
	stateAdd      = 1
	typeDock      = "_NET_WM_WINDOW_TYPE_DOCK"
	typeNormal    = "_NET_WM_WINDOW_TYPE_NORMAL"
	typeDesktop   = "_NET_WM_WINDOW_TYPE_DESKTOP"
	typeSplash    = "_NET_WM_WINDOW_TYPE_SPLASH"
	typeNotify    = "_NET_WM_WINDOW_TYPE_NOTIFICATION"
	typeUtility   = "_NET_WM_WINDOW_TYPE_UTILITY"
	iconicState   = 3
	activeByPager = 2
)

// Decorations mirrors the Motif decoration bits a window manager honours.
type Decorations struct {
	Title  bool
	Border bool
	Resize bool
	Menu   bool
}

// AllDecorations is what a window without Motif hints gets.
var AllDecorations = Decorations{Title: true, Border: true, Resize: true, Menu: true}

// GetDecorations reads _MOTIF_WM_HINTS. Windows without the hint are fully
// decorated.
func (c *Connection) GetDecorations(win xproto.Window) Decorations {
	hints, err := motif.WmHintsGet(c.XUtil, win)
	if err != nil || hints == nil || hints.Flags&motif.HintDecorations == 0 {
		return AllDecorations
	}
	if hints.Decoration&motif.DecorationAll != 0 {
		return AllDecorations
	}
	return Decorations{
		Title:  hints.Decoration&motif.DecorationTitle != 0,
		Border: hints.Decoration&motif.DecorationBorder != 0,
		Resize: hints.Decoration&motif.DecorationResizeH != 0,
		Menu:   hints.Decoration&motif.DecorationMenu != 0,
	}
}

// SetDecorations writes _MOTIF_WM_HINTS.
func (c *Connection) SetDecorations(win xproto.Window, d Decorations) error {
	var dec uint
	if d.Title {
		dec |= motif.DecorationTitle
	}
	if d.Border {
		dec |= motif.DecorationBorder
	}
	if d.Resize {
		dec |= motif.DecorationResizeH
	}
	if d.Menu {
		dec |= motif.DecorationMenu
	}
	return motif.WmHintsSet(c.XUtil, win, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: dec,
	})
}

// States returns the window's _NET_WM_STATE atoms.
func (c *Connection) States(win xproto.Window) map[string]bool {
	out := make(map[string]bool)
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return out
	}
	for _, s := range states {
		out[s] = true
	}
	return out
}

// SetAbove adds or removes _NET_WM_STATE_ABOVE.
func (c *Connection) SetAbove(win xproto.Window, above bool) error {
	action := stateRemove
	if above {
		action = stateAdd
	}
	return ewmh.WmStateReq(c.XUtil, win, action, stateAbove)
}

// SetMaximized adds or removes both maximized states.
func (c *Connection) SetMaximized(win xproto.Window, maximized bool) error {
	action := stateRemove
	if maximized {
		action = stateAdd
	}
	return ewmh.WmStateReqExtra(c.XUtil, win, action, stateMaxHorz, stateMaxVert, activeByPager)
}

// MoveResizeWindow moves and resizes a window, clearing any maximized state
// first so the window manager honours the geometry.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	states := c.States(win)
	if states[stateMaxHorz] || states[stateMaxVert] {
		_ = c.SetMaximized(win, false)
	}

	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

// Raise restacks a window above its siblings.
func (c *Connection) Raise(win xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// Lower restacks a window below its siblings.
func (c *Connection) Lower(win xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow},
	).Check()
}

// Map shows a window.
func (c *Connection) Map(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Unmap hides a window.
func (c *Connection) Unmap(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Viewable reports whether a window is mapped and visible.
func (c *Connection) Viewable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// Expose asks the server to send the window an Expose event.
func (c *Connection) Expose(win xproto.Window) error {
	return xproto.ClearAreaChecked(c.XUtil.Conn(), true, win, 0, 0, 0, 0).Check()
}

func (c *Connection) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(win xproto.Window) error {
	changeState, err := c.atom("WM_CHANGE_STATE")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   changeState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// CloseWindow requests a graceful close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(win xproto.Window) error {
	deleteWindow, err := c.atom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteWindow), 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		win,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// Focus activates and raises a window with a _NET_ACTIVE_WINDOW client
// message. The message is built by hand because the xgbutil request helper
// panics on this library version.
func (c *Connection) Focus(win xproto.Window) error {
	active, err := c.atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   active,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{activeByPager, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// ActiveWindow returns the focused client.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// Parent returns the parent of win in the window tree.
func (c *Connection) Parent(win xproto.Window) (xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return 0, err
	}
	return tree.Parent, nil
}

// Geometry returns the window's root-relative origin and size.
func (c *Connection) Geometry(win xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// ExecutablePath resolves the client's _NET_WM_PID to its executable.
func (c *Connection) ExecutablePath(win xproto.Window) (string, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, win)
	if err != nil {
		return "", err
	}
	return os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
}

func (c *Connection) windowTypes(win xproto.Window) map[string]bool {
	out := make(map[string]bool)
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return out
	}
	for _, t := range types {
		out[t] = true
	}
	return out
}

// IsUtility reports whether the client declared itself a utility window.
func (c *Connection) IsUtility(win xproto.Window) bool {
	return c.windowTypes(win)[typeUtility]
}

// IsNormalWindow checks if a window is a normal application window.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types := c.windowTypes(win)
	if types[typeNormal] {
		return true
	}
	if types[typeDesktop] || types[typeDock] || types[typeSplash] || types[typeNotify] {
		return false
	}
	return len(types) == 0
}

// Clients lists managed normal windows that are not hidden.
func (c *Connection) Clients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}
	out := make([]xproto.Window, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) || c.States(win)[stateHidden] {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// Docks lists the root's children that declare the dock window type.
func (c *Connection) Docks() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	var out []xproto.Window
	for _, win := range tree.Children {
		if c.windowTypes(win)[typeDock] {
			out = append(out, win)
		}
	}
	return out, nil
}
