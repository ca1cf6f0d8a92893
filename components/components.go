// Package components defines ECS components and plain entity data for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// Particle holds the immutable identity of a particle entity.
// ID and Group are assigned at creation and never change.
type Particle struct {
	ID    uint64
	Group int // Attractor group in [0, groups)
}

// Link is a transient edge between two particles within the link threshold.
// A link is never revived: a new link between the same pair gets a new ID.
type Link struct {
	ID       uint64
	From, To ecs.Entity
	FromID   uint64
	ToID     uint64

	Distance  float64 // Endpoint distance at the last relink pass
	Intensity float64 // 1 at zero distance, 0 at the threshold
}

// PairKey is the canonical unordered particle pair: Lo < Hi.
type PairKey struct {
	Lo, Hi uint64
}

// MakePairKey orders two particle IDs into a PairKey.
func MakePairKey(a, b uint64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Pair returns the link's canonical pair key.
func (l *Link) Pair() PairKey {
	return MakePairKey(l.FromID, l.ToID)
}
