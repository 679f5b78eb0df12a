package merge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/harmonyhq/linework/pkg/sketch"
)

// seqIDs returns a deterministic vertex ID generator for tests.
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("v%d", n)
	}
}

func testOpts() Options {
	return Options{LayerID: "l1", NewVertexID: seqIDs()}
}

// line builds a polyline on layer l1 from coordinate pairs.
func line(id string, coords ...float64) sketch.Polyline {
	pts := make([]sketch.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, sketch.Point{X: coords[i], Y: coords[i+1]})
	}
	return sketch.Polyline{ID: id, LayerID: "l1", Points: pts}
}

func TestMerge_MissingLayerID(t *testing.T) {
	_, err := Merge(nil, Options{})
	if !errors.Is(err, ErrMissingLayerID) {
		t.Errorf("Merge() error = %v, want ErrMissingLayerID", err)
	}
}

func TestMerge_NegativeEpsilon(t *testing.T) {
	_, err := Merge(nil, Options{LayerID: "l1", Eps: Epsilon{Endpoints: -1}})
	if !errors.Is(err, ErrNegativeEpsilon) {
		t.Errorf("Merge() error = %v, want ErrNegativeEpsilon", err)
	}
}

func TestMerge_EmptyLayer(t *testing.T) {
	other := sketch.Polyline{ID: "x", LayerID: "l2", Points: []sketch.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}

	res, err := Merge([]sketch.Polyline{other}, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if res.Changed {
		t.Error("Changed = true, want false for empty layer")
	}
	if len(res.Polylines) != 1 || res.Polylines[0].ID != "x" {
		t.Errorf("Polylines = %v, want passthrough of other layer", res.Polylines)
	}
}

func TestMerge_WeldsEndpoints(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 1, 0),
		line("b", 1.005, 0, 2, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if len(res.Polylines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(res.Polylines))
	}
	merged := res.Polylines[0]
	if len(merged.Points) != 3 {
		t.Errorf("merged has %d points, want 3", len(merged.Points))
	}
	if merged.Points[1].X != 1 || merged.Points[1].Y != 0 {
		t.Errorf("welded point = (%v, %v), want (1, 0)", merged.Points[1].X, merged.Points[1].Y)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if res.LineIDMap["a"] != merged.ID || res.LineIDMap["b"] != merged.ID {
		t.Errorf("LineIDMap = %v, want both lines mapped to %s", res.LineIDMap, merged.ID)
	}
	wantPrefix := "merged-l1-"
	if len(merged.ID) != len(wantPrefix)+12 || merged.ID[:len(wantPrefix)] != wantPrefix {
		t.Errorf("merged ID = %q, want %q plus 12 hash chars", merged.ID, wantPrefix)
	}
}

func TestMerge_SplitsAtIntersection(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 2, 2),
		line("b", 0, 2, 2, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if res.Stats.Splits != 1 {
		t.Errorf("Splits = %d, want 1", res.Stats.Splits)
	}
	if res.Stats.Edges != 4 {
		t.Errorf("Edges = %d, want 4", res.Stats.Edges)
	}
	if res.Stats.Components != 1 {
		t.Errorf("Components = %d, want 1", res.Stats.Components)
	}
	if len(res.Polylines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(res.Polylines))
	}

	merged := res.Polylines[0]
	if len(merged.Points) != 5 {
		t.Fatalf("merged has %d points, want 5", len(merged.Points))
	}
	seen := make(map[string]bool)
	for _, p := range merged.Points {
		seen[p.ID] = true
	}
	for _, id := range []string{"v1", "v2", "v3", "v4", "v5"} {
		if !seen[id] {
			t.Errorf("merged points missing vertex %s", id)
		}
	}
}

// A crossing has four odd-degree vertices, so no single trail covers all
// four arms. The walk still consumes every edge; the price is consecutive
// output vertices that no edge joins. This pins that trade so a walk
// change cannot silently alter it.
func TestMerge_CrossingWalkJumpsBetweenArms(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 2, 2),
		line("b", 0, 2, 2, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if res.Stats.Edges != 4 {
		t.Fatalf("Edges = %d, want 4", res.Stats.Edges)
	}
	if len(res.Polylines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(res.Polylines))
	}

	var ids []string
	for _, p := range res.Polylines[0].Points {
		ids = append(ids, p.ID)
	}
	want := []string{"v1", "v5", "v4", "v3", "v2"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("point sequence = %v, want %v", ids, want)
	}

	// The split arms all meet at the center vertex v5.
	arms := map[string]bool{
		"v1|v5": true, "v5|v1": true,
		"v5|v2": true, "v2|v5": true,
		"v3|v5": true, "v5|v3": true,
		"v5|v4": true, "v4|v5": true,
	}
	jumps := 0
	for i := 1; i < len(ids); i++ {
		if !arms[ids[i-1]+"|"+ids[i]] {
			jumps++
		}
	}
	if jumps != 2 {
		t.Errorf("non-edge adjacencies = %d, want 2 (v4-v3 and v3-v2)", jumps)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 2, 2),
		line("b", 0, 2, 2, 0),
	}

	first, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("first Merge() error: %v", err)
	}
	if !first.Changed {
		t.Fatal("first Changed = false, want true")
	}

	again := make([]sketch.Polyline, len(first.Polylines))
	for i, p := range first.Polylines {
		again[i] = p.Clone()
	}
	second, err := Merge(again, testOpts())
	if err != nil {
		t.Fatalf("second Merge() error: %v", err)
	}

	if second.Changed {
		t.Error("second Changed = true, want false")
	}
	if len(second.Polylines) != len(first.Polylines) {
		t.Errorf("second run has %d polylines, want %d", len(second.Polylines), len(first.Polylines))
	}
	if len(second.Polylines[0].Points) != len(first.Polylines[0].Points) {
		t.Errorf("second run has %d points, want %d",
			len(second.Polylines[0].Points), len(first.Polylines[0].Points))
	}
}

func TestMerge_DuplicateConsecutivePoints(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 0, 0, 1, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if len(res.Polylines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(res.Polylines))
	}
	if got := len(res.Polylines[0].Points); got != 2 {
		t.Errorf("merged has %d points, want 2 after dropping the duplicate", got)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
}

func TestMerge_ShortSegmentFiltered(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 0.0005, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if res.Stats.Edges != 0 {
		t.Errorf("Edges = %d, want 0", res.Stats.Edges)
	}
	if res.Changed {
		t.Error("Changed = true, want false when no edges survive")
	}
	if len(res.Polylines) != 1 || res.Polylines[0].ID != "a" {
		t.Errorf("Polylines = %v, want unchanged input", res.Polylines)
	}
}

func TestMerge_OtherLayersPassThrough(t *testing.T) {
	other := sketch.Polyline{
		ID:      "bg",
		LayerID: "l2",
		Points:  []sketch.Point{{X: 0, Y: 5}, {X: 9, Y: 5}},
	}
	shapes := []sketch.Polyline{
		other.Clone(),
		line("a", 0, 0, 1, 0),
		line("b", 1.002, 0, 2, 0),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if len(res.Polylines) != 2 {
		t.Fatalf("got %d polylines, want 2", len(res.Polylines))
	}
	if res.Polylines[0].ID != "bg" {
		t.Errorf("first polyline = %s, want untouched other-layer shape first", res.Polylines[0].ID)
	}
	if res.Polylines[0].Points[0].Y != 5 {
		t.Error("other-layer geometry was modified")
	}
	if res.Polylines[1].LayerID != "l1" {
		t.Errorf("merged shape on layer %s, want l1", res.Polylines[1].LayerID)
	}
}

func TestMerge_DisjointComponents(t *testing.T) {
	shapes := []sketch.Polyline{
		line("a", 0, 0, 1, 0),
		line("b", 10, 10, 11, 10),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if res.Stats.Components != 2 {
		t.Errorf("Components = %d, want 2", res.Stats.Components)
	}
	if len(res.Polylines) != 2 {
		t.Fatalf("got %d polylines, want 2", len(res.Polylines))
	}
	if res.Polylines[0].ID == res.Polylines[1].ID {
		t.Error("disjoint components share a merged ID")
	}
	if res.LineIDMap["a"] == res.LineIDMap["b"] {
		t.Error("disjoint source lines mapped to the same merged line")
	}
	if res.Changed {
		t.Error("Changed = true, want false: both shapes keep their point counts")
	}
}

func TestMerge_FigureEightCoversAllEdges(t *testing.T) {
	// Two triangles sharing the vertex (1,1). Every vertex has even
	// degree, so the walk must produce a closed trail through all 6 edges.
	shapes := []sketch.Polyline{
		line("a", 0, 0, 2, 0, 1, 1, 0, 0),
		line("b", 1, 1, 0, 2, 2, 2, 1, 1),
	}

	res, err := Merge(shapes, testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if res.Stats.Edges != 6 {
		t.Errorf("Edges = %d, want 6", res.Stats.Edges)
	}
	if res.Stats.Components != 1 {
		t.Errorf("Components = %d, want 1", res.Stats.Components)
	}
	if len(res.Polylines) != 1 {
		t.Fatalf("got %d polylines, want 1", len(res.Polylines))
	}

	pts := res.Polylines[0].Points
	if len(pts) != 7 {
		t.Fatalf("merged has %d points, want 7 for a closed 6-edge trail", len(pts))
	}
	if pts[0].ID != pts[6].ID {
		t.Errorf("trail ends at %s, want to close at start %s", pts[6].ID, pts[0].ID)
	}
}

func TestMerge_DeterministicOutput(t *testing.T) {
	build := func() []sketch.Polyline {
		return []sketch.Polyline{
			line("a", 0, 0, 2, 2),
			line("b", 0, 2, 2, 0),
			line("c", 5, 5, 6, 5),
		}
	}

	r1, err := Merge(build(), testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	r2, err := Merge(build(), testOpts())
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if len(r1.Polylines) != len(r2.Polylines) {
		t.Fatalf("runs produced %d and %d polylines", len(r1.Polylines), len(r2.Polylines))
	}
	for i := range r1.Polylines {
		p1, p2 := r1.Polylines[i], r2.Polylines[i]
		if p1.ID != p2.ID {
			t.Errorf("polyline %d: IDs %s and %s differ between runs", i, p1.ID, p2.ID)
		}
		if len(p1.Points) != len(p2.Points) {
			t.Errorf("polyline %d: point counts %d and %d differ", i, len(p1.Points), len(p2.Points))
			continue
		}
		for j := range p1.Points {
			if p1.Points[j] != p2.Points[j] {
				t.Errorf("polyline %d point %d: %+v != %+v", i, j, p1.Points[j], p2.Points[j])
			}
		}
	}
}

func TestDefaultQuantize(t *testing.T) {
	v := DefaultQuantize(1.23456789)
	if v != 1.234568 {
		t.Errorf("DefaultQuantize(1.23456789) = %v, want 1.234568", v)
	}
	if DefaultQuantize(v) != v {
		t.Error("DefaultQuantize is not idempotent on its own output")
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	opts := Options{LayerID: "l1"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Eps != DefaultEpsilon() {
		t.Errorf("Eps = %+v, want defaults", opts.Eps)
	}
	if opts.NewVertexID == nil || opts.Quantize == nil || opts.Logger == nil {
		t.Error("defaults not applied")
	}

	// Partial epsilons keep explicit values.
	opts = Options{LayerID: "l1", Eps: Epsilon{Endpoints: 0.5}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Eps.Endpoints != 0.5 {
		t.Errorf("Endpoints = %v, want 0.5", opts.Eps.Endpoints)
	}
	if opts.Eps.Intersection != DefaultEpsilon().Intersection {
		t.Errorf("Intersection = %v, want default", opts.Eps.Intersection)
	}
}
