package merge

import "github.com/harmonyhq/linework/pkg/sketch"

// NetworkVertex is an exported view of one canonical vertex.
type NetworkVertex struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// NetworkEdge is an exported view of one fine edge, referencing vertices
// by ID and carrying its originating polyline ID.
type NetworkEdge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	LineID string `json:"lineId"`
}

// Network is the merged topology of one layer, exposed for inspection
// and debug visualization. Components lists edge indices per connected
// component, in deterministic discovery order.
type Network struct {
	Vertices   []NetworkVertex `json:"vertices"`
	Edges      []NetworkEdge   `json:"edges"`
	Components [][]int         `json:"components"`
}

// Topology runs the geometric stages of normalization on opts.LayerID
// and returns the resulting network without assembling merged polylines.
// Like [Merge], it consumes the input: welding mutates points in place.
func Topology(polylines []sketch.Polyline, opts Options) (*Network, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	net := buildNetwork(selectLayer(polylines, opts.LayerID), opts)

	out := &Network{}
	seen := make(map[string]bool)
	addVertex := func(v *vertex) {
		if !seen[v.id] {
			seen[v.id] = true
			out.Vertices = append(out.Vertices, NetworkVertex{ID: v.id, X: v.x, Y: v.y})
		}
	}
	for _, e := range net.edges {
		addVertex(e.a)
		addVertex(e.b)
		out.Edges = append(out.Edges, NetworkEdge{A: e.a.id, B: e.b.id, LineID: e.lineID})
	}
	for _, comp := range net.comps {
		out.Components = append(out.Components, comp.edgeIdxs)
	}
	return out, nil
}
