package components

// Position represents a particle's field position in pixels.
type Position struct {
	X, Y float64
}

// Velocity represents a particle's per-tick displacement.
type Velocity struct {
	X, Y float64
}

// Cell records which grid bucket holds a particle and where inside it.
// Slot is the particle's index in the bucket slice, kept current by the index
// so removal is a swap with the last element.
type Cell struct {
	Col, Row int
	Slot     int
}
