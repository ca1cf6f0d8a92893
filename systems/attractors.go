package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/linkfield/components"
)

// AccelerationField pulls each particle toward the attractor of its group
// with a constant magnitude, forming clustering basins.
type AccelerationField struct {
	attractors []r2.Vec
	strength   float64
}

// NewAccelerationField places five attractors in a width x height field:
// the four quadrant centres and the field centre.
func NewAccelerationField(width, height, strength float64) *AccelerationField {
	return &AccelerationField{
		attractors: []r2.Vec{
			{X: width / 4, Y: height / 4},
			{X: width / 4, Y: 3 * height / 4},
			{X: 3 * width / 4, Y: height / 4},
			{X: 3 * width / 4, Y: 3 * height / 4},
			{X: width / 2, Y: height / 2},
		},
		strength: strength,
	}
}

// Attractors returns the attractor points.
func (f *AccelerationField) Attractors() []r2.Vec {
	return f.attractors
}

// Strength returns the pull magnitude.
func (f *AccelerationField) Strength() float64 {
	return f.strength
}

// SetStrength changes the pull magnitude.
func (f *AccelerationField) SetStrength(k float64) {
	f.strength = k
}

// AttractorFor returns the attractor selected by group.
// Groups beyond the attractor count wrap around.
func (f *AccelerationField) AttractorFor(group int) r2.Vec {
	n := len(f.attractors)
	idx := group % n
	if idx < 0 {
		idx += n
	}
	return f.attractors[idx]
}

// At returns -k * (pos - a) / |pos - a| for the group's attractor a.
// A particle sitting exactly on its attractor gets zero acceleration.
func (f *AccelerationField) At(pos r2.Vec, group int) r2.Vec {
	d := r2.Sub(pos, f.AttractorFor(group))
	dist := r2.Norm(d)
	if dist == 0 {
		return r2.Vec{}
	}
	return r2.Scale(-f.strength/dist, d)
}

// AccelerationSystem applies the field to every particle's velocity.
type AccelerationSystem struct {
	filter *ecs.Filter3[components.Position, components.Velocity, components.Particle]
	field  *AccelerationField
}

// NewAccelerationSystem creates an acceleration system over all particles in w.
func NewAccelerationSystem(w *ecs.World, field *AccelerationField) *AccelerationSystem {
	return &AccelerationSystem{
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Particle](w),
		field:  field,
	}
}

// Update adds one tick of acceleration to every particle.
func (s *AccelerationSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, part := query.Get()
		ApplyAcceleration(vel, s.field.At(r2.Vec{X: pos.X, Y: pos.Y}, part.Group))
	}
}
