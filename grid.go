package bounce

import "math"

// spatialGrid is a uniform grid for broad-phase collision detection.
// Circles are inserted by index each frame, then candidate partners are
// found with a 3x3 cell neighborhood lookup instead of the O(n²) loop.
//
// Cell size must be >= the largest circle diameter so that every
// potentially colliding pair lands within the 3x3 neighborhood.
type spatialGrid struct {
	origin      Vec2
	cellSize    float64
	invCellSize float64
	cols        int
	rows        int
	cells       [][]int
}

// newSpatialGrid creates a grid covering bounds with the given cell size.
func newSpatialGrid(bounds Bounds, cellSize float64) *spatialGrid {
	cols := int(math.Ceil(bounds.Width() / cellSize))
	rows := int(math.Ceil(bounds.Height() / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &spatialGrid{
		origin:      Vec2{X: bounds.MinX, Y: bounds.MinY},
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([][]int, cols*rows),
	}
}

// clear removes all items without deallocating the per-cell slices.
func (g *spatialGrid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// insert adds a circle index at the given world position.
func (g *spatialGrid) insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
}

// forNeighbors calls fn for each index in the 3x3 cell neighborhood around
// the given world position. Cells beyond the grid edge are skipped (walls
// do not wrap). The same index can be reported once per containing cell
// only, since each circle is inserted into exactly one cell.
func (g *spatialGrid) forNeighbors(x, y float64, fn func(index int)) {
	col, row := g.posToCell(x, y)

	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		rowOffset := r * g.cols

		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			for _, idx := range g.cells[rowOffset+c] {
				fn(idx)
			}
		}
	}
}

// posToCell converts world coordinates to grid cell coordinates, clamped
// to the valid range so positions on or slightly past the walls still map
// to an edge cell.
func (g *spatialGrid) posToCell(x, y float64) (col, row int) {
	col = int((x - g.origin.X) * g.invCellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int((y - g.origin.Y) * g.invCellSize)
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
