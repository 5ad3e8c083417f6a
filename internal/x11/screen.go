package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Screen is the root window's extent and the work area left by panels and docks.
type Screen struct {
	X, Y, Width, Height int
	WorkX, WorkY        int
	WorkWidth           int
	WorkHeight          int
	DPI                 uint32
}

// Screen returns the root geometry together with _NET_WORKAREA for the
// current desktop. Without a work area the whole root is usable.
func (c *Connection) Screen() (Screen, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Screen{}, err
	}
	s := Screen{
		Width:      int(geom.Width),
		Height:     int(geom.Height),
		WorkWidth:  int(geom.Width),
		WorkHeight: int(geom.Height),
		DPI:        c.dpi(),
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return s, nil
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(areas) {
		idx = int(desktop)
	}
	wa := areas[idx]

	x1 := max(s.X, int(wa.X))
	y1 := max(s.Y, int(wa.Y))
	x2 := min(s.X+s.Width, int(wa.X)+int(wa.Width))
	y2 := min(s.Y+s.Height, int(wa.Y)+int(wa.Height))
	if x2 > x1 && y2 > y1 {
		s.WorkX, s.WorkY = x1, y1
		s.WorkWidth, s.WorkHeight = x2-x1, y2-y1
	}
	return s, nil
}

// dpi derives the screen DPI from its physical size, defaulting to 96.
func (c *Connection) dpi() uint32 {
	screen := c.XUtil.Screen()
	if screen == nil || screen.WidthInMillimeters == 0 {
		return 96
	}
	dpi := uint32(float64(screen.WidthInPixels) * 25.4 / float64(screen.WidthInMillimeters))
	if dpi == 0 {
		return 96
	}
	return dpi
}
