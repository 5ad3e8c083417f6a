package tiling

import (
	"math"

	"github.com/1broseidon/wintile/internal/binding"
	"github.com/1broseidon/wintile/internal/geometry"
	"github.com/1broseidon/wintile/internal/platform"
)

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows <= 0 {
		return 0, 0
	}

	// Columns first (ceiling of square root), then the rows needed
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes tile bounds for a grid layout with gaps. There
// is one gap before each column and row and one after the last.
func CalculatePositions(numWindows int, area geometry.Bounds, gapSize int) []geometry.Bounds {
	if numWindows <= 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	totalHorizontalGaps := (cols + 1) * gapSize
	totalVerticalGaps := (rows + 1) * gapSize

	cellWidth := (area.Width - totalHorizontalGaps) / cols
	cellHeight := (area.Height - totalVerticalGaps) / rows

	positions := make([]geometry.Bounds, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		positions[i] = geometry.Bounds{
			X:      area.X + gapSize + col*(cellWidth+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions
}

// WorkArea returns the tiling area of a display: its usable rectangle inset
// by padding on every side, less the bar height when the bar is shown.
// The bar only costs height here because geometry.Compute shifts every tile
// down by the bar height.
func WorkArea(d platform.Display, padding int, s geometry.Settings) geometry.Bounds {
	u := d.Usable
	if u.Width() <= 0 || u.Height() <= 0 {
		u = d.Bounds
	}
	area := geometry.Bounds{
		X:      u.Left + padding,
		Y:      u.Top + padding,
		Width:  u.Width() - 2*padding,
		Height: u.Height() - 2*padding,
	}
	if s.DisplayAppBar {
		area.Height -= s.AppBarHeight
	}
	if area.Width < 1 {
		area.Width = 1
	}
	if area.Height < 1 {
		area.Height = 1
	}
	return area
}

// Neighbour returns the grid index next to idx in direction dir for a grid
// of n tiles, or -1 at an edge.
func Neighbour(n, idx int, dir binding.Direction) int {
	if idx < 0 || idx >= n {
		return -1
	}
	_, cols := CalculateGrid(n)
	row, col := idx/cols, idx%cols

	next := -1
	switch dir {
	case binding.Left:
		if col > 0 {
			next = idx - 1
		}
	case binding.Right:
		if col < cols-1 {
			next = idx + 1
		}
	case binding.Up:
		if row > 0 {
			next = idx - cols
		}
	case binding.Down:
		next = idx + cols
	}
	if next >= n {
		return -1
	}
	return next
}
