package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/linkfield/components"
)

// testWorld bundles a world with the mapper and index tests spawn into.
type testWorld struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Velocity, components.Particle, components.Cell]
	posMap *ecs.Map[components.Position]
	index  *SpatialIndex
	ids    *IDSource
}

func newTestWorld(width, height, threshold float64) *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		world:  w,
		mapper: ecs.NewMap4[components.Position, components.Velocity, components.Particle, components.Cell](w),
		posMap: ecs.NewMap[components.Position](w),
		index:  NewSpatialIndex(w, width, height, threshold),
		ids:    NewIDSource(),
	}
}

func (tw *testWorld) spawn(x, y, vx, vy float64, group int) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	part := components.Particle{ID: tw.ids.Next(), Group: group}
	cell := components.Cell{}

	e := tw.mapper.NewEntity(&pos, &vel, &part, &cell)
	tw.index.Assign(e, pos)
	return e
}

// moveTo teleports a particle and settles it into the right bucket.
func (tw *testWorld) moveTo(e ecs.Entity, x, y float64) {
	pos := tw.posMap.Get(e)
	pos.X, pos.Y = x, y
	tw.index.Settle(e, *pos)
}

// checkBuckets verifies every particle sits in the bucket matching floor(pos / cellSize).
func (tw *testWorld) checkBuckets(t *testing.T) {
	t.Helper()
	cellMap := ecs.NewMap[components.Cell](tw.world)
	cw, ch := tw.index.CellSize()
	cols, rows := tw.index.Dims()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			for slot, e := range tw.index.Bucket(col, row) {
				pos := tw.posMap.Get(e)
				wantCol := min(int(math.Floor(pos.X/cw)), cols-1)
				wantRow := min(int(math.Floor(pos.Y/ch)), rows-1)
				if col != wantCol || row != wantRow {
					t.Fatalf("particle at (%.3f, %.3f) in bucket (%d, %d), want (%d, %d)",
						pos.X, pos.Y, col, row, wantCol, wantRow)
				}
				cell := cellMap.Get(e)
				if cell.Col != col || cell.Row != row || cell.Slot != slot {
					t.Fatalf("cell component %+v disagrees with bucket (%d, %d) slot %d", *cell, col, row, slot)
				}
			}
		}
	}
}
