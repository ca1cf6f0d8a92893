package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/linkfield/components"
)

// Bounds describes the field and the wall offset applied to particles.
type Bounds struct {
	Width, Height float64
	Radius        float64
}

// MotionStats counts events from one integration pass.
type MotionStats struct {
	Reflections int
	Migrations  int
}

// MotionSystem advances particle positions and keeps the spatial index current.
type MotionSystem struct {
	filter *ecs.Filter3[components.Position, components.Velocity, components.Cell]
	bounds Bounds
	index  *SpatialIndex
}

// NewMotionSystem creates a motion system over all particles in w.
func NewMotionSystem(w *ecs.World, bounds Bounds, index *SpatialIndex) *MotionSystem {
	return &MotionSystem{
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Cell](w),
		bounds: bounds,
		index:  index,
	}
}

// Update integrates every particle by one tick and migrates those that
// crossed a cell boundary.
func (s *MotionSystem) Update() MotionStats {
	var stats MotionStats

	query := s.filter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()

		var rx, ry bool
		pos.X, vel.X, rx = ReflectAxis(pos.X, vel.X, s.bounds.Width, s.bounds.Radius)
		pos.Y, vel.Y, ry = ReflectAxis(pos.Y, vel.Y, s.bounds.Height, s.bounds.Radius)
		if rx {
			stats.Reflections++
		}
		if ry {
			stats.Reflections++
		}

		stats.Migrations += s.index.Settle(query.Entity(), *pos)
	}

	return stats
}

// ReflectAxis advances one axis by vel inside [radius, size-radius].
// A particle heading out through a wall is mirrored back and its velocity
// inverted; speed is preserved. The result is clamped to the walls.
func ReflectAxis(pos, vel, size, radius float64) (newPos, newVel float64, reflected bool) {
	far := size - radius
	next := pos + vel

	switch {
	case next > far && vel > 0:
		next = 2*far - vel - pos - radius
		vel = -vel
		reflected = true
	case next < radius && vel < 0:
		next = math.Abs(vel) - pos + radius
		vel = -vel
		reflected = true
	}

	if next < radius {
		next = radius
	} else if next > far {
		next = far
	}

	return next, vel, reflected
}

// ApplyAcceleration accumulates acc into vel. No speed cap is applied.
func ApplyAcceleration(vel *components.Velocity, acc r2.Vec) {
	vel.X += acc.X
	vel.Y += acc.Y
}
