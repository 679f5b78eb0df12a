package merge

import "github.com/harmonyhq/linework/pkg/sketch"

// vertex is a canonical, deduplicated network vertex. Many points
// canonicalize to one vertex: welding rewrites a point's ID and
// coordinates to those of the vertex it welded onto, so the vertex ID is
// always the ID of the point that first produced it.
type vertex struct {
	id   string
	x, y float64
}

// registry maps point IDs to canonical vertices and answers proximity
// queries through the spatial grid. Coordinates are quantized on entry,
// before any comparison. The registry is owned by a single normalization
// call and passed explicitly through every stage.
type registry struct {
	quantize func(float64) float64
	newID    func() string

	byPoint map[string]*vertex // point ID -> canonical vertex
	grid    *grid
}

func newRegistry(cell float64, quantize func(float64) float64, newID func() string) *registry {
	return &registry{
		quantize: quantize,
		newID:    newID,
		byPoint:  make(map[string]*vertex),
		grid:     newGrid(cell),
	}
}

// registerFromPoint quantizes the point in place, assigns it an ID if it
// has none, and returns the canonical vertex for that point ID, creating
// and indexing one if the ID is new.
func (r *registry) registerFromPoint(p *sketch.Point) *vertex {
	p.X = r.quantize(p.X)
	p.Y = r.quantize(p.Y)
	if p.ID == "" {
		p.ID = r.newID()
	}
	if v, ok := r.byPoint[p.ID]; ok {
		return v
	}
	v := &vertex{id: p.ID, x: p.X, y: p.Y}
	r.byPoint[p.ID] = v
	r.grid.add(v)
	return v
}

// findNearby returns the nearest registered vertex within radius of
// (x, y), or nil if none is close enough. Ties at equal distance keep
// the first vertex encountered, which is deterministic because the grid
// preserves insertion order.
func (r *registry) findNearby(x, y, radius float64) *vertex {
	var best *vertex
	bestD := radius * radius
	for _, v := range r.grid.nearby(x, y) {
		dx, dy := v.x-x, v.y-y
		if d := dx*dx + dy*dy; d <= bestD && (best == nil || d < bestD) {
			best = v
			bestD = d
		}
	}
	return best
}

// getOrCreateNear is the welding primitive: reuse an existing vertex
// within radius of (x, y), or mint a new point ID and register a fresh
// vertex at the quantized location.
func (r *registry) getOrCreateNear(x, y, radius float64) *vertex {
	if v := r.findNearby(x, y, radius); v != nil {
		return v
	}
	v := &vertex{id: r.newID(), x: r.quantize(x), y: r.quantize(y)}
	r.byPoint[v.id] = v
	r.grid.add(v)
	return v
}

// vertexOf returns the canonical vertex for a registered point.
// The point must have been passed through registerFromPoint first.
func (r *registry) vertexOf(p sketch.Point) *vertex {
	return r.byPoint[p.ID]
}
