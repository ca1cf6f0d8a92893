package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/linkfield/components"
)

func TestAttractorPlacement(t *testing.T) {
	f := NewAccelerationField(800, 400, 0.1)
	want := []r2.Vec{
		{X: 200, Y: 100},
		{X: 200, Y: 300},
		{X: 600, Y: 100},
		{X: 600, Y: 300},
		{X: 400, Y: 200},
	}

	got := f.Attractors()
	if len(got) != len(want) {
		t.Fatalf("got %d attractors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attractor %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAccelerationAt(t *testing.T) {
	f := NewAccelerationField(800, 400, 0.1)

	tests := []struct {
		name  string
		pos   r2.Vec
		group int
		want  r2.Vec
	}{
		{"right of attractor", r2.Vec{X: 250, Y: 100}, 0, r2.Vec{X: -0.1, Y: 0}},
		{"above centre", r2.Vec{X: 400, Y: 150}, 4, r2.Vec{X: 0, Y: 0.1}},
		{"diagonal", r2.Vec{X: 603, Y: 304}, 3, r2.Vec{X: -0.06, Y: -0.08}},
		{"group wraps", r2.Vec{X: 650, Y: 100}, 7, r2.Vec{X: -0.1, Y: 0}},
		{"negative group wraps", r2.Vec{X: 400, Y: 250}, -1, r2.Vec{X: 0, Y: -0.1}},
		{"on the attractor", r2.Vec{X: 200, Y: 300}, 1, r2.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.At(tt.pos, tt.group)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("At(%v, %d) = %v, want %v", tt.pos, tt.group, got, tt.want)
			}
		})
	}
}

func TestAccelerationMagnitudeIsConstant(t *testing.T) {
	f := NewAccelerationField(1000, 1000, 0.25)
	for _, p := range []r2.Vec{{X: 1, Y: 1}, {X: 251, Y: 250}, {X: 999, Y: 10}} {
		if n := r2.Norm(f.At(p, 0)); math.Abs(n-0.25) > 1e-12 {
			t.Errorf("|At(%v)| = %v, want 0.25", p, n)
		}
	}
}

func TestAccelerationSystemUpdate(t *testing.T) {
	tw := newTestWorld(800, 400, 50)
	e := tw.spawn(250, 100, 1, 1, 0)

	field := NewAccelerationField(800, 400, 0.1)
	sys := NewAccelerationSystem(tw.world, field)
	sys.Update()
	sys.Update()

	// Velocity accumulates without a cap.
	vel := ecs.NewMap[components.Velocity](tw.world).Get(e)
	if math.Abs(vel.X-0.8) > 1e-12 || math.Abs(vel.Y-1) > 1e-12 {
		t.Errorf("velocity = %+v, want {X:0.8 Y:1}", *vel)
	}

	field.SetStrength(0)
	sys.Update()
	if math.Abs(vel.X-0.8) > 1e-12 {
		t.Errorf("zero strength changed velocity to %+v", *vel)
	}
}
