// Package spatial is the broad-phase acceleration structure the server tick
// uses before running narrow-phase interaction checks (movement's circle/ray
// tests). A uniform grid over mathutil.Vec2 positions, keyed by ecs.Handle so
// a cell holds the entity handles the rest of the simulation already uses.
package spatial

import (
	"math"

	"catch/internal/ecs"
	"catch/internal/mathutil"
)

// Grid provides average O(1) radius queries via fixed-size cells. Cell size
// should equal the largest query radius in use; callers with several query
// radii (e.g. detection vs. collision) should keep separate Grids.
//
// Cells are stored in row-major order (cells[row*cols+col]).
type Grid struct {
	cellSize    float32
	invCellSize float32
	cols, rows  int
	cells       [][]ecs.Handle
	scratch     []ecs.Handle
}

// NewGrid creates a grid covering [0,worldWidth) x [0,worldHeight), with
// cellSize the edge length of each square cell. maxEntities sizes the
// per-cell preallocation.
func NewGrid(worldWidth, worldHeight, cellSize float32, maxEntities int) *Grid {
	cols := int(math.Ceil(float64(worldWidth / cellSize)))
	rows := int(math.Ceil(float64(worldHeight / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]ecs.Handle, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]ecs.Handle, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]ecs.Handle, 0, 64),
	}
}

// Clear empties every cell without releasing the underlying arrays.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *Grid) clampedCell(p mathutil.Vec2) int {
	col := int(p.X * g.invCellSize)
	row := int(p.Y * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// Insert places h at position p.
func (g *Grid) Insert(h ecs.Handle, p mathutil.Vec2) {
	idx := g.clampedCell(p)
	g.cells[idx] = append(g.cells[idx], h)
}

// QueryRadius returns entity handles whose cell overlaps a circle of radius
// centered at p. The returned slice is reused on the next call and may
// contain handles outside the true radius; callers narrow-phase check.
func (g *Grid) QueryRadius(p mathutil.Vec2, radius float32) []ecs.Handle {
	g.scratch = g.scratch[:0]

	minCol := int((p.X - radius) * g.invCellSize)
	maxCol := int((p.X + radius) * g.invCellSize)
	minRow := int((p.Y - radius) * g.invCellSize)
	maxRow := int((p.Y + radius) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.scratch = append(g.scratch, g.cells[idx]...)
		}
	}
	return g.scratch
}

// Dimensions reports the grid's cell geometry, useful for diagnostics.
func (g *Grid) Dimensions() (cols, rows int, cellSize float32) {
	return g.cols, g.rows, g.cellSize
}
