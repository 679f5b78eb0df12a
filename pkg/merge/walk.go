package merge

import "sort"

// walkComponent reconstructs one vertex sequence per component with a
// stack-based walk that consumes every component edge exactly once.
//
// The walk starts at an odd-degree vertex when the component has one
// (an Eulerian trail, if it exists, must start there) and emits vertices
// in pop order: a vertex is appended once all of its incident edges have
// been consumed. For components admitting an Eulerian trail or circuit
// the result is a valid trail through every edge. Components with more
// than two odd-degree vertices have no single trail; the sequence still
// covers every edge but may contain consecutive vertices that are not
// joined by one (an accepted limitation of one-polyline-per-component
// output).
//
// Candidate vertices and incident edges are visited in sorted-ID and
// construction order respectively, so the walk is deterministic.
func walkComponent(edges []edge, comp component) []*vertex {
	adj := make(map[string][]int, len(comp.verts))
	for _, ei := range comp.edgeIdxs {
		e := edges[ei]
		adj[e.a.id] = append(adj[e.a.id], ei)
		adj[e.b.id] = append(adj[e.b.id], ei)
	}

	start := startVertex(comp, adj)
	if start == nil {
		return nil
	}

	used := make(map[int]bool, len(comp.edgeIdxs))
	cursor := make(map[string]int, len(adj))
	stack := []*vertex{start}
	var out []*vertex

	for len(stack) > 0 {
		v := stack[len(stack)-1]

		next := -1
		for cursor[v.id] < len(adj[v.id]) {
			ei := adj[v.id][cursor[v.id]]
			if !used[ei] {
				next = ei
				break
			}
			cursor[v.id]++
		}

		if next < 0 {
			out = append(out, v)
			stack = stack[:len(stack)-1]
			continue
		}

		used[next] = true
		stack = append(stack, edges[next].other(v))
	}

	reverse(out)
	return collapseRuns(out)
}

// startVertex picks the walk's starting point: the smallest-ID vertex of
// odd incident-edge count within the component, or the smallest-ID vertex
// overall when every degree is even.
func startVertex(comp component, adj map[string][]int) *vertex {
	ids := make([]string, 0, len(comp.verts))
	for id := range comp.verts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if len(adj[id])%2 == 1 {
			return comp.verts[id]
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return comp.verts[ids[0]]
}

func reverse(vs []*vertex) {
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
}

// collapseRuns removes consecutive duplicate vertices from the sequence.
func collapseRuns(vs []*vertex) []*vertex {
	if len(vs) == 0 {
		return vs
	}
	out := vs[:1]
	for _, v := range vs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
