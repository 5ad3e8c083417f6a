// Package bar implements the status bar's component model: named components
// that render to a list of text segments and optionally react to clicks.
package bar

import (
	"fmt"

	"github.com/1broseidon/wintile/internal/platform"
)

// Text is one rendered segment. FG and BG are optional packed colours in
// the platform's 0x00BBGGRR format; nil means the bar default.
type Text struct {
	Value string  `json:"text"`
	FG    *uint32 `json:"fg,omitempty"`
	BG    *uint32 `json:"bg,omitempty"`
}

// Basic returns an uncoloured segment.
func Basic(s string) Text { return Text{Value: s} }

// Colored returns a segment with optional foreground and background colours.
func Colored(fg, bg *uint32, s string) Text { return Text{Value: s, FG: fg, BG: bg} }

// Color returns a pointer to c, for use with Colored.
func Color(c uint32) *uint32 { return &c }

// RenderFunc produces a component's segments for a display.
type RenderFunc func(c *Component, d platform.Display) []Text

// ClickFunc receives the index of the segment that was clicked.
type ClickFunc func(c *Component, d platform.Display, idx int)

// Component is a named, renderable piece of the bar.
type Component struct {
	Name    string
	render  RenderFunc
	onClick ClickFunc
}

// New returns a non-clickable component.
func New(name string, render RenderFunc) *Component {
	return &Component{Name: name, render: render}
}

// Default returns the placeholder component.
func Default() *Component {
	return New("Default", func(*Component, platform.Display) []Text {
		return []Text{Basic("Hello World")}
	})
}

// WithOnClick installs a click handler and makes the component clickable.
func (c *Component) WithOnClick(fn ClickFunc) *Component {
	c.onClick = fn
	return c
}

// Clickable reports whether a click handler is installed.
func (c *Component) Clickable() bool { return c.onClick != nil }

// Render invokes the render function.
func (c *Component) Render(d platform.Display) []Text {
	if c.render == nil {
		return nil
	}
	return c.render(c, d)
}

// Click invokes the click handler, if any, with the clicked segment index.
func (c *Component) Click(d platform.Display, idx int) {
	if c.onClick != nil {
		c.onClick(c, d, idx)
	}
}

func (c *Component) String() string {
	return fmt.Sprintf("Component(name: %s, clickable: %t)", c.Name, c.Clickable())
}
