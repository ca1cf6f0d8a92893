// Package systems provides ECS systems for the simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/linkfield/components"
)

// SpatialIndex partitions the field into a fixed grid of buckets.
// Cells are at least as large as the link threshold, so every pair within the
// threshold lies in the same or an adjacent cell.
type SpatialIndex struct {
	cols    int
	rows    int
	cellW   float64
	cellH   float64
	buckets [][]ecs.Entity // flat grid, row*cols+col

	cellMap *ecs.Map[components.Cell]
}

// NewSpatialIndex creates a grid covering a width x height field with cells
// sized width/floor(width/threshold) by height/floor(height/threshold).
func NewSpatialIndex(w *ecs.World, width, height, threshold float64) *SpatialIndex {
	cols := gridCount(width, threshold)
	rows := gridCount(height, threshold)

	buckets := make([][]ecs.Entity, cols*rows)
	for i := range buckets {
		buckets[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialIndex{
		cols:    cols,
		rows:    rows,
		cellW:   width / float64(cols),
		cellH:   height / float64(rows),
		buckets: buckets,
		cellMap: ecs.NewMap[components.Cell](w),
	}
}

// gridCount returns floor(dim / threshold), never less than one.
func gridCount(dim, threshold float64) int {
	if threshold <= 0 {
		return 1
	}
	n := int(math.Floor(dim / threshold))
	if n < 1 {
		return 1
	}
	return n
}

// Dims returns the number of columns and rows.
func (g *SpatialIndex) Dims() (cols, rows int) {
	return g.cols, g.rows
}

// CellSize returns the cell width and height.
func (g *SpatialIndex) CellSize() (w, h float64) {
	return g.cellW, g.cellH
}

// InBounds reports whether (col, row) addresses a bucket.
func (g *SpatialIndex) InBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// Bucket returns the particles in cell (col, row).
// Out-of-range coordinates have no bucket and return nil.
// The slice is owned by the index; callers must not modify it.
func (g *SpatialIndex) Bucket(col, row int) []ecs.Entity {
	if !g.InBounds(col, row) {
		return nil
	}
	return g.buckets[row*g.cols+col]
}

// Len returns the number of indexed particles.
func (g *SpatialIndex) Len() int {
	n := 0
	for _, b := range g.buckets {
		n += len(b)
	}
	return n
}

// Assign places a particle into the cell containing pos, using
// ceil(pos / cellSize) - 1 with a raw coordinate of 0 mapped to cell 0.
// Only used at initialization; the entity must carry a Cell component.
func (g *SpatialIndex) Assign(e ecs.Entity, pos components.Position) {
	col := assignCoord(pos.X, g.cellW, g.cols)
	row := assignCoord(pos.Y, g.cellH, g.rows)
	g.insert(e, col, row)
}

// assignCoord maps a coordinate to a cell index clamped to [0, n-1].
func assignCoord(v, size float64, n int) int {
	idx := int(math.Ceil(v/size)) - 1
	if idx < 0 {
		idx = 0
	} else if idx >= n {
		idx = n - 1
	}
	return idx
}

// ShiftOf reports whether pos has left cell in either axis.
// Each component is +1 when the position lies past the cell's far edge,
// -1 when it lies before the near edge, and 0 otherwise.
func (g *SpatialIndex) ShiftOf(cell components.Cell, pos components.Position) (dx, dy int) {
	return axisShift(pos.X/g.cellW, cell.Col), axisShift(pos.Y/g.cellH, cell.Row)
}

func axisShift(scaled float64, idx int) int {
	if scaled > float64(idx+1) {
		return 1
	}
	if scaled < float64(idx) {
		return -1
	}
	return 0
}

// Migrate moves a particle from its current cell to the cell offset by
// (dx, dy). The source bucket is compacted by swapping in its last element.
// Shifts that would leave the grid are ignored.
func (g *SpatialIndex) Migrate(e ecs.Entity, dx, dy int) bool {
	cell := g.cellMap.Get(e)
	if cell == nil {
		return false
	}
	col, row := cell.Col+dx, cell.Row+dy
	if (dx == 0 && dy == 0) || !g.InBounds(col, row) {
		return false
	}

	g.remove(cell)
	g.insert(e, col, row)
	return true
}

// Settle migrates a particle one cell at a time until its bucket matches
// pos. Returns the number of migrations performed.
func (g *SpatialIndex) Settle(e ecs.Entity, pos components.Position) int {
	cell := g.cellMap.Get(e)
	if cell == nil {
		return 0
	}

	moves := 0
	// A path across the grid never needs more than cols+rows single steps.
	for limit := g.cols + g.rows; limit > 0; limit-- {
		dx, dy := g.ShiftOf(*cell, pos)
		if !g.Migrate(e, dx, dy) {
			break
		}
		moves++
	}
	return moves
}

// insert appends e to bucket (col, row) and records its slot.
func (g *SpatialIndex) insert(e ecs.Entity, col, row int) {
	idx := row*g.cols + col
	g.buckets[idx] = append(g.buckets[idx], e)

	cell := g.cellMap.Get(e)
	cell.Col = col
	cell.Row = row
	cell.Slot = len(g.buckets[idx]) - 1
}

// remove swap-removes the particle at cell's slot.
func (g *SpatialIndex) remove(cell *components.Cell) {
	idx := cell.Row*g.cols + cell.Col
	bucket := g.buckets[idx]
	last := len(bucket) - 1

	if cell.Slot != last {
		moved := bucket[last]
		bucket[cell.Slot] = moved
		g.cellMap.Get(moved).Slot = cell.Slot
	}
	g.buckets[idx] = bucket[:last]
}
