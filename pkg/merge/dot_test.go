package merge

import (
	"strings"
	"testing"

	"github.com/harmonyhq/linework/pkg/sketch"
)

func TestTopology(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 2, 2),
		line("b", 0, 2, 2, 0),
	}

	net, err := Topology(shapes, testOpts())
	if err != nil {
		t.Fatalf("Topology() error: %v", err)
	}

	if len(net.Vertices) != 5 {
		t.Errorf("vertices = %d, want 5", len(net.Vertices))
	}
	if len(net.Edges) != 4 {
		t.Errorf("edges = %d, want 4", len(net.Edges))
	}
	if len(net.Components) != 1 {
		t.Errorf("components = %d, want 1", len(net.Components))
	}
	for _, e := range net.Edges {
		if e.LineID != "a" && e.LineID != "b" {
			t.Errorf("edge carries line ID %q, want a or b", e.LineID)
		}
	}
}

func TestTopology_MissingLayerID(t *testing.T) {
	if _, err := Topology(nil, Options{}); err == nil {
		t.Error("Topology() accepted empty options")
	}
}

func TestToDOT(t *testing.T) {
	net := &Network{
		Vertices: []NetworkVertex{
			{ID: "v1", X: 0, Y: 0},
			{ID: "v2", X: 1, Y: 0},
		},
		Edges:      []NetworkEdge{{A: "v1", B: "v2", LineID: "stroke-1"}},
		Components: [][]int{{0}},
	}

	dot := ToDOT(net, DotOptions{})

	if !strings.HasPrefix(dot, "graph network {") {
		t.Errorf("DOT does not open an undirected graph: %q", dot[:20])
	}
	if !strings.Contains(dot, `"v1" -- "v2"`) {
		t.Error("DOT is missing the edge")
	}
	if !strings.Contains(dot, `pos="0.000000,0.000000!"`) {
		t.Error("DOT does not pin vertices to their coordinates")
	}
	if !strings.Contains(dot, "stroke-1") {
		t.Error("DOT does not label edges with their line ID")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	net := &Network{
		Vertices:   []NetworkVertex{{ID: "vertex-123456", X: 1.5, Y: 2}},
		Components: [][]int{},
	}

	dot := ToDOT(net, DotOptions{Detailed: true})

	if !strings.Contains(dot, "vertex-1") {
		t.Error("detailed DOT is missing the short vertex ID")
	}
	if !strings.Contains(dot, "1.5") {
		t.Error("detailed DOT is missing the coordinates")
	}
}
