package merge

import "github.com/harmonyhq/linework/pkg/sketch"

// split records a pending crossing on a segment: the parametric position
// t in (0,1) and the canonical vertex welded at the crossing point.
type split struct {
	t float64
	v *vertex
}

// segment is one consecutive point pair of a source polyline, referenced
// by canonical vertices. Segments are ephemeral: they exist only between
// segment building and edge emission. The index is the point-pair index
// within the source polyline, used to skip adjacent pairs during
// intersection resolution.
type segment struct {
	lineID string
	index  int
	a, b   *vertex
	splits []split
}

// addSplit records a crossing, deduplicating by vertex ID and keeping
// the smallest t for repeated hits on the same vertex.
func (s *segment) addSplit(t float64, v *vertex) {
	for i, sp := range s.splits {
		if sp.v.id == v.id {
			if t < sp.t {
				s.splits[i].t = t
			}
			return
		}
	}
	s.splits = append(s.splits, split{t: t, v: v})
}

// buildSegments decomposes the layer's polylines into segments.
// Polylines with fewer than two points contribute nothing. Point pairs
// welded to the same vertex, or whose vertices share quantized
// coordinates, are degenerate and dropped. All geometry from here on is
// post-welding: segments reference vertices, never raw input points.
func buildSegments(lines []sketch.Polyline, reg *registry) []*segment {
	var segs []*segment
	for _, pl := range lines {
		for i := 0; i+1 < len(pl.Points); i++ {
			va := reg.vertexOf(pl.Points[i])
			vb := reg.vertexOf(pl.Points[i+1])
			if va == vb || (va.x == vb.x && va.y == vb.y) {
				continue
			}
			segs = append(segs, &segment{lineID: pl.ID, index: i, a: va, b: vb})
		}
	}
	return segs
}
