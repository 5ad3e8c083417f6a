// Package geometry converts a logical tile rectangle into the outer window
// rectangle the platform must be given so the visible client area lands on
// the tile, compensating for title bars, frames and browser chrome.
package geometry

import (
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/rules"
	"github.com/1broseidon/wintile/internal/style"
)

// Bounds is a logical tile: origin plus size.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Metrics are the per-DPI frame and caption sizes of the display.
type Metrics struct {
	BorderWidth   int
	BorderHeight  int
	CaptionHeight int
}

// Settings are the configuration values the calculation depends on.
type Settings struct {
	RemoveTitleBar bool
	UseBorder      bool
	DisplayAppBar  bool
	AppBarHeight   int
}

// MetricsFor queries the platform metrics at the display's DPI.
func MetricsFor(api platform.Backend, d platform.Display) Metrics {
	dpi := d.DPI
	if dpi == 0 {
		dpi = platform.DefaultDPI
	}
	return Metrics{
		BorderWidth:   api.SystemMetric(platform.MetricFrameWidth, dpi),
		BorderHeight:  api.SystemMetric(platform.MetricFrameHeight, dpi),
		CaptionHeight: api.SystemMetric(platform.MetricCaptionHeight, dpi),
	}
}

// Compute is the pure part of the calculation: everything except the final
// platform style adjustment.
func Compute(b Bounds, m Metrics, r rules.Rule, s Settings) platform.Rect {
	left := b.X
	top := b.Y
	right := b.X + b.Width
	bottom := b.Y + b.Height

	bw, bh := m.BorderWidth, m.BorderHeight

	if r.Chromium || r.Firefox || !s.RemoveTitleBar {
		top += m.CaptionHeight
	} else {
		top -= bh * 2
		if s.UseBorder {
			left++
			right--
			top++
			bottom--
		}
	}

	if s.DisplayAppBar {
		top += s.AppBarHeight
		bottom += s.AppBarHeight
	}

	if r.Firefox || r.Chromium || (!s.RemoveTitleBar && r.HasCustomTitlebar) {
		if r.Firefox {
			left -= int(float32(bw) * 1.5)
			right += int(float32(bw) * 1.5)
			bottom += int(float32(bh) * 1.5)
		} else if r.Chromium {
			top -= bh / 2
			left -= bw * 2
			right += bw * 2
			bottom += bh * 2
		}
		left += bw * 2
		right -= bw * 2
		top += bh * 2
		bottom -= bh * 2
	} else {
		top += bh * 2
	}

	return platform.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// WindowRect computes the rectangle to pass to SetWindowPos for a window
// with the given current styles. The platform adjustment uses the styles the
// window has now, so callers push style changes before calling this.
func WindowRect(api platform.Backend, d platform.Display, r rules.Rule, s Settings, b Bounds, st style.Style, ex style.ExStyle) (platform.Rect, error) {
	rect := Compute(b, MetricsFor(api, d), r, s)
	return api.AdjustWindowRect(rect, st, ex)
}
