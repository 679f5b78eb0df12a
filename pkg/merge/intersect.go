package merge

import "math"

// parallelEps bounds the determinant below which a segment pair is
// treated as parallel or collinear and skipped. Overlapping collinear
// segments are intentionally unsupported.
const parallelEps = 1e-12

// resolveIntersections computes the crossing of every unordered,
// non-adjacent segment pair and records a split on both segments. The
// pass is quadratic in the layer's segment count; callers keep per-layer
// counts small.
//
// Returns the number of splits recorded, for stats.
func resolveIntersections(segs []*segment, reg *registry, eps Epsilon) int {
	splits := 0
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			s1, s2 := segs[i], segs[j]
			if s1.lineID == s2.lineID && abs(s1.index-s2.index) <= 1 {
				continue
			}
			if sharesEndpoint(s1, s2) {
				continue
			}
			t, u, ok := intersectParams(s1, s2)
			if !ok {
				continue
			}
			px := s1.a.x + t*(s1.b.x-s1.a.x)
			py := s1.a.y + t*(s1.b.y-s1.a.y)
			if nearEndpoint(px, py, s1, eps.Intersection) || nearEndpoint(px, py, s2, eps.Intersection) {
				// Already welded (or will be, by the endpoint pass).
				continue
			}
			v := reg.getOrCreateNear(px, py, eps.Intersection)
			s1.addSplit(t, v)
			s2.addSplit(u, v)
			splits++
		}
	}
	return splits
}

// intersectParams solves the 2x2 linear system for the crossing of two
// segments, returning the parametric positions t on s1 and u on s2.
// Reports false for parallel pairs and for crossings outside [0,1] on
// either segment.
func intersectParams(s1, s2 *segment) (t, u float64, ok bool) {
	r1x, r1y := s1.b.x-s1.a.x, s1.b.y-s1.a.y
	r2x, r2y := s2.b.x-s2.a.x, s2.b.y-s2.a.y

	den := r1x*r2y - r1y*r2x
	if math.Abs(den) <= parallelEps {
		return 0, 0, false
	}

	dx, dy := s2.a.x-s1.a.x, s2.a.y-s1.a.y
	t = (dx*r2y - dy*r2x) / den
	u = (dx*r1y - dy*r1x) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}
	return t, u, true
}

func sharesEndpoint(s1, s2 *segment) bool {
	return s1.a.id == s2.a.id || s1.a.id == s2.b.id ||
		s1.b.id == s2.a.id || s1.b.id == s2.b.id
}

func nearEndpoint(x, y float64, s *segment, radius float64) bool {
	return distSq(x, y, s.a.x, s.a.y) <= radius*radius ||
		distSq(x, y, s.b.x, s.b.y) <= radius*radius
}

func distSq(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return dx*dx + dy*dy
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
