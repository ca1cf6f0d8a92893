package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/linkfield/components"
)

// LinkRegistry maps an unordered particle pair to the ID of its link.
// Keys are canonical, so (a, b) and (b, a) always resolve to the same entry.
type LinkRegistry struct {
	links map[components.PairKey]uint64
}

// NewLinkRegistry creates an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{links: make(map[components.PairKey]uint64)}
}

// Add registers linkID for the pair (a, b).
// Returns false and leaves the registry unchanged if the pair is already linked.
func (r *LinkRegistry) Add(a, b, linkID uint64) bool {
	key := components.MakePairKey(a, b)
	if _, ok := r.links[key]; ok {
		return false
	}
	r.links[key] = linkID
	return true
}

// Lookup returns the link registered for (a, b).
func (r *LinkRegistry) Lookup(a, b uint64) (uint64, bool) {
	id, ok := r.links[components.MakePairKey(a, b)]
	return id, ok
}

// Linked reports whether (a, b) has a link.
func (r *LinkRegistry) Linked(a, b uint64) bool {
	_, ok := r.links[components.MakePairKey(a, b)]
	return ok
}

// Remove unregisters the pair and returns the link it pointed to.
func (r *LinkRegistry) Remove(a, b uint64) (uint64, bool) {
	key := components.MakePairKey(a, b)
	id, ok := r.links[key]
	if ok {
		delete(r.links, key)
	}
	return id, ok
}

// Len returns the number of registered pairs.
func (r *LinkRegistry) Len() int {
	return len(r.links)
}

// LinkStats counts events from one relink pass.
type LinkStats struct {
	Pairs   int // Candidate pairs whose distance was tested
	Created int
	Removed int
}

// NeighborLinker maintains the link graph from the spatial index.
type NeighborLinker struct {
	index     *SpatialIndex
	ids       *IDSource
	threshold float64

	posMap  *ecs.Map[components.Position]
	partMap *ecs.Map[components.Particle]

	registry *LinkRegistry
	pool     []components.Link
	visited  []bool // per bucket, reset every pass
}

// NewNeighborLinker creates a linker that links particles no further apart than threshold.
func NewNeighborLinker(w *ecs.World, index *SpatialIndex, ids *IDSource, threshold float64) *NeighborLinker {
	cols, rows := index.Dims()
	return &NeighborLinker{
		index:     index,
		ids:       ids,
		threshold: threshold,
		posMap:    ecs.NewMap[components.Position](w),
		partMap:   ecs.NewMap[components.Particle](w),
		registry:  NewLinkRegistry(),
		visited:   make([]bool, cols*rows),
	}
}

// Threshold returns the link distance.
func (l *NeighborLinker) Threshold() float64 {
	return l.threshold
}

// Links returns the current link pool. The slice is owned by the linker and is
// only valid until the next Relink.
func (l *NeighborLinker) Links() []components.Link {
	return l.pool
}

// Registry returns the pair registry.
func (l *NeighborLinker) Registry() *LinkRegistry {
	return l.registry
}

// Linked reports whether two particles currently share a link.
func (l *NeighborLinker) Linked(a, b ecs.Entity) bool {
	pa, pb := l.partMap.Get(a), l.partMap.Get(b)
	if pa == nil || pb == nil {
		return false
	}
	return l.registry.Linked(pa.ID, pb.ID)
}

// Relink creates links for newly close pairs, then drops links whose
// endpoints moved beyond the threshold and refreshes the intensity of the rest.
//
// Buckets are visited in row-major order. Each bucket is paired with itself and
// with those of its eight neighbours already visited in this pass, so every
// unordered bucket pair is examined exactly once.
func (l *NeighborLinker) Relink() LinkStats {
	var stats LinkStats
	cols, rows := l.index.Dims()
	clear(l.visited)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			bucket := l.index.Bucket(col, row)

			for i := 0; i < len(bucket)-1; i++ {
				for j := i + 1; j < len(bucket); j++ {
					l.checkPair(bucket[i], bucket[j], &stats)
				}
			}

			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					nc, nr := col+dc, row+dr
					if (dc == 0 && dr == 0) || !l.index.InBounds(nc, nr) || !l.visited[nr*cols+nc] {
						continue
					}
					neighbour := l.index.Bucket(nc, nr)
					for _, a := range bucket {
						for _, b := range neighbour {
							l.checkPair(a, b, &stats)
						}
					}
				}
			}

			l.visited[row*cols+col] = true
		}
	}

	l.sweep(&stats)
	return stats
}

// checkPair links a and b if they are within the threshold and not yet linked.
func (l *NeighborLinker) checkPair(a, b ecs.Entity, stats *LinkStats) {
	stats.Pairs++

	d := distance(l.posMap.Get(a), l.posMap.Get(b))
	if d > l.threshold {
		return
	}

	pa, pb := l.partMap.Get(a), l.partMap.Get(b)
	if l.registry.Linked(pa.ID, pb.ID) {
		return
	}

	id := l.ids.Next()
	l.registry.Add(pa.ID, pb.ID, id)
	l.pool = append(l.pool, components.Link{
		ID:        id,
		From:      a,
		To:        b,
		FromID:    pa.ID,
		ToID:      pb.ID,
		Distance:  d,
		Intensity: LinkIntensity(d, l.threshold),
	})
	stats.Created++
}

// sweep removes stretched links and refreshes the survivors.
// Iterates backwards so swap-removal never skips an unvisited link.
func (l *NeighborLinker) sweep(stats *LinkStats) {
	for i := len(l.pool) - 1; i >= 0; i-- {
		link := &l.pool[i]
		d := distance(l.posMap.Get(link.From), l.posMap.Get(link.To))

		if d > l.threshold {
			l.registry.Remove(link.FromID, link.ToID)
			last := len(l.pool) - 1
			l.pool[i] = l.pool[last]
			l.pool = l.pool[:last]
			stats.Removed++
			continue
		}

		link.Distance = d
		link.Intensity = LinkIntensity(d, l.threshold)
	}
}

// LinkIntensity falls linearly from 1 at zero distance to 0 at the threshold.
func LinkIntensity(d, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	v := 1 - d/threshold
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func distance(a, b *components.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
