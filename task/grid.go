package task

import "math"

// DefaultGridSize is the side of the plan-position grid in 1 m cells.
const DefaultGridSize = 200

// PositionGrid marks the cells a plan has passed through. Coordinates
// outside the grid are clamped on write and ignored on read.
type PositionGrid struct {
	size  int
	cells []bool
}

// NewPositionGrid returns an empty size x size grid.
func NewPositionGrid(size int) *PositionGrid {
	if size <= 0 {
		size = DefaultGridSize
	}
	return &PositionGrid{size: size, cells: make([]bool, size*size)}
}

// Size returns the side length.
func (g *PositionGrid) Size() int { return g.size }

// Mark sets every cell from floor-1 to ceil+1 around (x, y) on both axes,
// clipped to the grid.
func (g *PositionGrid) Mark(x, y float64) {
	x0, x1 := int(math.Floor(x))-1, int(math.Ceil(x))+1
	y0, y1 := int(math.Floor(y))-1, int(math.Ceil(y))+1
	if x1 < 0 || y1 < 0 || x0 >= g.size || y0 >= g.size {
		return
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, g.size-1), min(y1, g.size-1)
	for i := x0; i <= x1; i++ {
		for j := y0; j <= y1; j++ {
			g.cells[i*g.size+j] = true
		}
	}
}

// Visited reports whether any of the four cells at the floor/ceil corners
// of (x, y) is marked.
func (g *PositionGrid) Visited(x, y float64) bool {
	fx, fy := int(math.Floor(x)), int(math.Floor(y))
	cx, cy := int(math.Ceil(x)), int(math.Ceil(y))
	return g.at(fx, fy) || g.at(fx, cy) || g.at(cx, fy) || g.at(cx, cy)
}

// Reset clears every cell.
func (g *PositionGrid) Reset() {
	clear(g.cells)
}

// Count returns the number of marked cells.
func (g *PositionGrid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

func (g *PositionGrid) at(i, j int) bool {
	if i < 0 || j < 0 || i >= g.size || j >= g.size {
		return false
	}
	return g.cells[i*g.size+j]
}
