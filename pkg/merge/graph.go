package merge

import "sort"

// edge is the finest connection in the merged network, produced by
// walking a segment's sorted splits. Duplicate literal edges are
// preserved, never deduplicated: if two source lines contribute the same
// connection, both edges survive into the walk.
type edge struct {
	a, b   *vertex
	lineID string
}

func (e edge) other(v *vertex) *vertex {
	if e.a == v {
		return e.b
	}
	return e.a
}

// buildEdges converts each segment's sorted split chain into fine edges
// between canonical vertices. Sub-edges shorter than eps.ShortSegment are
// dropped; this is how near-duplicate crossings collapse without leaving
// spurious micro-edges behind.
func buildEdges(segs []*segment, eps Epsilon) []edge {
	minSq := eps.ShortSegment * eps.ShortSegment
	var edges []edge
	for _, s := range segs {
		sort.Slice(s.splits, func(i, j int) bool {
			if s.splits[i].t != s.splits[j].t {
				return s.splits[i].t < s.splits[j].t
			}
			return s.splits[i].v.id < s.splits[j].v.id
		})

		chain := make([]*vertex, 0, len(s.splits)+2)
		chain = append(chain, s.a)
		for _, sp := range s.splits {
			chain = append(chain, sp.v)
		}
		chain = append(chain, s.b)

		for i := 0; i+1 < len(chain); i++ {
			p, q := chain[i], chain[i+1]
			if p == q {
				continue
			}
			if distSq(p.x, p.y, q.x, q.y) < minSq {
				continue
			}
			edges = append(edges, edge{a: p, b: q, lineID: s.lineID})
		}
	}
	return edges
}

// component is a maximal connected vertex/edge set of the network,
// carrying the distinct source line IDs that contributed an edge.
type component struct {
	edgeIdxs []int
	verts    map[string]*vertex
	lineIDs  []string // sorted, distinct
}

// components partitions all edges into connected components via
// breadth-first traversal over the vertex adjacency. Component order
// follows the first edge of each component, so output order is
// deterministic for a given input.
func components(edges []edge) []component {
	adj := adjacency(edges)

	visited := make([]bool, len(edges))
	var comps []component
	for seed := range edges {
		if visited[seed] {
			continue
		}
		comp := component{verts: make(map[string]*vertex)}
		lineIDs := make(map[string]bool)

		queue := []int{seed}
		visited[seed] = true
		for len(queue) > 0 {
			ei := queue[0]
			queue = queue[1:]
			e := edges[ei]

			comp.edgeIdxs = append(comp.edgeIdxs, ei)
			comp.verts[e.a.id] = e.a
			comp.verts[e.b.id] = e.b
			lineIDs[e.lineID] = true

			for _, vid := range []string{e.a.id, e.b.id} {
				for _, ni := range adj[vid] {
					if !visited[ni] {
						visited[ni] = true
						queue = append(queue, ni)
					}
				}
			}
		}

		comp.lineIDs = sortedKeys(lineIDs)
		comps = append(comps, comp)
	}
	return comps
}

// adjacency maps each vertex ID to the indices of its incident edges,
// in edge construction order.
func adjacency(edges []edge) map[string][]int {
	adj := make(map[string][]int)
	for i, e := range edges {
		adj[e.a.id] = append(adj[e.a.id], i)
		adj[e.b.id] = append(adj[e.b.id], i)
	}
	return adj
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
