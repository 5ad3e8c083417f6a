// Package style models the two 32-bit style words the platform keeps for
// every top-level window: the basic style and the extended style.
package style

import (
	"fmt"
	"strings"
)

// Style is the basic window style word (GWL_STYLE).
type Style uint32

const (
	Overlapped   Style = 0x00000000
	MaximizeBox  Style = 0x00010000
	TabStop      Style = 0x00010000
	MinimizeBox  Style = 0x00020000
	Group        Style = 0x00020000
	ThickFrame   Style = 0x00040000
	SysMenu      Style = 0x00080000
	HScroll      Style = 0x00100000
	VScroll      Style = 0x00200000
	DlgFrame     Style = 0x00400000
	Border       Style = 0x00800000
	Caption      Style = Border | DlgFrame
	Maximize     Style = 0x01000000
	ClipChildren Style = 0x02000000
	ClipSiblings Style = 0x04000000
	Disabled     Style = 0x08000000
	Visible      Style = 0x10000000
	Minimize     Style = 0x20000000
	Child        Style = 0x40000000
	Popup        Style = 0x80000000

	// OverlappedWindow is the style of an ordinary decorated application window.
	OverlappedWindow = Overlapped | Caption | SysMenu | ThickFrame | MinimizeBox | MaximizeBox
)

// FromBits reinterprets the signed word returned by the platform.
func FromBits(v int32) Style { return Style(uint32(v)) }

// Bits returns the signed word expected by the platform.
func (s Style) Bits() int32 { return int32(uint32(s)) }

// Has reports whether every bit of f is set.
func (s Style) Has(f Style) bool { return s&f == f }

// Insert sets the bits of f.
func (s *Style) Insert(f Style) { *s |= f }

// Remove clears the bits of f.
func (s *Style) Remove(f Style) { *s &^= f }

var styleNames = []struct {
	flag Style
	name string
}{
	{Popup, "POPUP"},
	{Child, "CHILD"},
	{Minimize, "MINIMIZE"},
	{Visible, "VISIBLE"},
	{Disabled, "DISABLED"},
	{ClipSiblings, "CLIPSIBLINGS"},
	{ClipChildren, "CLIPCHILDREN"},
	{Maximize, "MAXIMIZE"},
	{Caption, "CAPTION"},
	{Border, "BORDER"},
	{DlgFrame, "DLGFRAME"},
	{VScroll, "VSCROLL"},
	{HScroll, "HSCROLL"},
	{SysMenu, "SYSMENU"},
	{ThickFrame, "THICKFRAME"},
	{MinimizeBox, "MINIMIZEBOX"},
	{MaximizeBox, "MAXIMIZEBOX"},
}

func (s Style) String() string {
	var parts []string
	rest := s
	for _, n := range styleNames {
		if n.flag != 0 && rest.Has(n.flag) {
			parts = append(parts, n.name)
			rest.Remove(n.flag)
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%08x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "OVERLAPPED"
	}
	return strings.Join(parts, "|")
}

// ExStyle is the extended window style word (GWL_EXSTYLE).
type ExStyle uint32

const (
	DlgModalFrame  ExStyle = 0x00000001
	NoParentNotify ExStyle = 0x00000004
	Topmost        ExStyle = 0x00000008
	AcceptFiles    ExStyle = 0x00000010
	Transparent    ExStyle = 0x00000020
	MDIChild       ExStyle = 0x00000040
	ToolWindow     ExStyle = 0x00000080
	WindowEdge     ExStyle = 0x00000100
	ClientEdge     ExStyle = 0x00000200
	ContextHelp    ExStyle = 0x00000400
	Right          ExStyle = 0x00001000
	RTLReading     ExStyle = 0x00002000
	LeftScrollbar  ExStyle = 0x00004000
	ControlParent  ExStyle = 0x00010000
	StaticEdge     ExStyle = 0x00020000
	AppWindow      ExStyle = 0x00040000
	Layered        ExStyle = 0x00080000
	Composited     ExStyle = 0x02000000
	NoActivate     ExStyle = 0x08000000
)

// ExFromBits reinterprets the signed word returned by the platform.
func ExFromBits(v int32) ExStyle { return ExStyle(uint32(v)) }

// Bits returns the signed word expected by the platform.
func (s ExStyle) Bits() int32 { return int32(uint32(s)) }

// Has reports whether every bit of f is set.
func (s ExStyle) Has(f ExStyle) bool { return s&f == f }

// Insert sets the bits of f.
func (s *ExStyle) Insert(f ExStyle) { *s |= f }

// Remove clears the bits of f.
func (s *ExStyle) Remove(f ExStyle) { *s &^= f }

var exStyleNames = []struct {
	flag ExStyle
	name string
}{
	{DlgModalFrame, "DLGMODALFRAME"},
	{NoParentNotify, "NOPARENTNOTIFY"},
	{Topmost, "TOPMOST"},
	{AcceptFiles, "ACCEPTFILES"},
	{Transparent, "TRANSPARENT"},
	{MDIChild, "MDICHILD"},
	{ToolWindow, "TOOLWINDOW"},
	{WindowEdge, "WINDOWEDGE"},
	{ClientEdge, "CLIENTEDGE"},
	{ContextHelp, "CONTEXTHELP"},
	{Right, "RIGHT"},
	{RTLReading, "RTLREADING"},
	{LeftScrollbar, "LEFTSCROLLBAR"},
	{ControlParent, "CONTROLPARENT"},
	{StaticEdge, "STATICEDGE"},
	{AppWindow, "APPWINDOW"},
	{Layered, "LAYERED"},
	{Composited, "COMPOSITED"},
	{NoActivate, "NOACTIVATE"},
}

func (s ExStyle) String() string {
	var parts []string
	rest := s
	for _, n := range exStyleNames {
		if rest.Has(n.flag) {
			parts = append(parts, n.name)
			rest.Remove(n.flag)
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%08x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}
