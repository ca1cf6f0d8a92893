package systems

// IDSource issues identifiers that are unique for the lifetime of the process.
// Particles and links draw from the same source; zero is never issued.
// The zero value is ready to use.
type IDSource struct {
	last uint64
}

// NewIDSource creates an identifier source.
func NewIDSource() *IDSource {
	return &IDSource{}
}

// Next returns a fresh identifier.
func (s *IDSource) Next() uint64 {
	s.last++
	return s.last
}

// Issued returns how many identifiers have been handed out.
func (s *IDSource) Issued() uint64 {
	return s.last
}
