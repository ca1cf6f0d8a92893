package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/linkfield/components"
)

func TestNewSpatialIndex(t *testing.T) {
	tests := []struct {
		name             string
		width, height    float64
		threshold        float64
		wantCols         int
		wantRows         int
		wantCellW, wantH float64
	}{
		{"exact fit", 500, 300, 50, 10, 6, 50, 50},
		{"stretched cells", 1280, 800, 100, 12, 8, 1280.0 / 12, 100},
		{"field smaller than threshold", 40, 30, 50, 1, 1, 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewSpatialIndex(ecs.NewWorld(), tt.width, tt.height, tt.threshold)
			cols, rows := idx.Dims()
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("Dims() = %dx%d, want %dx%d", cols, rows, tt.wantCols, tt.wantRows)
			}
			cw, ch := idx.CellSize()
			if math.Abs(cw-tt.wantCellW) > 1e-9 || math.Abs(ch-tt.wantH) > 1e-9 {
				t.Errorf("CellSize() = %vx%v, want %vx%v", cw, ch, tt.wantCellW, tt.wantH)
			}
		})
	}
}

func TestAssign(t *testing.T) {
	tests := []struct {
		name       string
		x, y       float64
		col, row   int
	}{
		{"origin", 0, 0, 0, 0},
		{"inside first cell", 10, 20, 0, 0},
		{"on first boundary", 50, 50, 0, 0},
		{"just past boundary", 50.5, 100.5, 1, 2},
		{"far corner", 500, 300, 9, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld(500, 300, 50)
			e := tw.spawn(tt.x, tt.y, 0, 0, 0)

			cell := ecs.NewMap[components.Cell](tw.world).Get(e)
			if cell.Col != tt.col || cell.Row != tt.row {
				t.Errorf("Assign(%v, %v) -> (%d, %d), want (%d, %d)", tt.x, tt.y, cell.Col, cell.Row, tt.col, tt.row)
			}
			bucket := tw.index.Bucket(tt.col, tt.row)
			if len(bucket) != 1 || bucket[0] != e {
				t.Errorf("bucket (%d, %d) = %v, want [%v]", tt.col, tt.row, bucket, e)
			}
		})
	}
}

func TestShiftOf(t *testing.T) {
	idx := NewSpatialIndex(ecs.NewWorld(), 500, 300, 50)
	cell := components.Cell{Col: 2, Row: 2}

	tests := []struct {
		name   string
		x, y   float64
		dx, dy int
	}{
		{"same cell", 120, 130, 0, 0},
		{"on near edge", 100, 100, 0, 0},
		{"on far edge", 150, 150, 0, 0},
		{"crossed right", 151, 120, 1, 0},
		{"crossed up", 120, 99, 0, -1},
		{"crossed diagonally", 99, 151, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := idx.ShiftOf(cell, components.Position{X: tt.x, Y: tt.y})
			if dx != tt.dx || dy != tt.dy {
				t.Errorf("ShiftOf(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, dx, dy, tt.dx, tt.dy)
			}
		})
	}
}

func TestMigrateSwapRemove(t *testing.T) {
	tw := newTestWorld(500, 300, 50)
	a := tw.spawn(10, 10, 0, 0, 0)
	b := tw.spawn(20, 20, 0, 0, 0)
	c := tw.spawn(30, 30, 0, 0, 0)

	// Move a out; c should fill its slot.
	tw.posMap.Get(a).X = 60
	if !tw.index.Migrate(a, 1, 0) {
		t.Fatal("Migrate returned false for a valid shift")
	}

	src := tw.index.Bucket(0, 0)
	if len(src) != 2 || src[0] != c || src[1] != b {
		t.Errorf("source bucket = %v, want [%v %v]", src, c, b)
	}
	dst := tw.index.Bucket(1, 0)
	if len(dst) != 1 || dst[0] != a {
		t.Errorf("destination bucket = %v, want [%v]", dst, a)
	}

	tw.checkBuckets(t)
}

func TestMigrateRejectsInvalidShift(t *testing.T) {
	tw := newTestWorld(500, 300, 50)
	e := tw.spawn(10, 10, 0, 0, 0)

	if tw.index.Migrate(e, 0, 0) {
		t.Error("zero shift should not migrate")
	}
	if tw.index.Migrate(e, -1, 0) {
		t.Error("shift off the grid should not migrate")
	}
	if got := tw.index.Bucket(0, 0); len(got) != 1 || got[0] != e {
		t.Errorf("bucket changed after rejected migrations: %v", got)
	}
}

func TestSettleAcrossSeveralCells(t *testing.T) {
	tw := newTestWorld(500, 300, 50)
	e := tw.spawn(10, 10, 0, 0, 0)

	pos := tw.posMap.Get(e)
	pos.X, pos.Y = 175, 60
	moves := tw.index.Settle(e, *pos)

	// Three columns right, one row down, one cell per step.
	if moves != 3 {
		t.Errorf("Settle moves = %d, want 3", moves)
	}
	tw.checkBuckets(t)
	if tw.index.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tw.index.Len())
	}
}

func TestBucketOutOfRange(t *testing.T) {
	idx := NewSpatialIndex(ecs.NewWorld(), 500, 300, 50)
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 6}} {
		if b := idx.Bucket(c[0], c[1]); b != nil {
			t.Errorf("Bucket(%d, %d) = %v, want nil", c[0], c[1], b)
		}
	}
}
