// Package merge normalizes the polyline network of one scene layer.
//
// Raw user input produces arbitrarily many independently drawn polylines
// that may overlap, cross, or nearly touch at endpoints without being
// topologically connected. Merge produces a minimal set of merged,
// topologically consistent polylines:
//
//   - endpoints that are spatially close are welded into shared vertices,
//   - every pairwise segment intersection becomes an explicit vertex
//     splitting both segments,
//   - near-zero-length edges are discarded,
//   - each connected component of the resulting graph is re-serialized as
//     one polyline via a traversal that consumes every edge exactly once.
//
// The computation is pure and synchronous: all working state (vertex
// registry, spatial grid) is owned by the call and discarded afterwards.
// Output is deterministic and idempotent: normalizing the output of a
// prior call with the same options reports no change.
//
// The input is consumed, not merely read: welding rewrites point
// coordinates and IDs in place. Callers that need the original should
// clone the polylines first.
//
// Parallel or exactly collinear segment pairs are never split; resolving
// overlapping collinear geometry is intentionally unsupported.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harmonyhq/linework/pkg/sketch"
)

var (
	// ErrMissingLayerID is returned by [Merge] and [Topology] when the
	// options name no layer.
	ErrMissingLayerID = errors.New("layer ID is required")

	// ErrNegativeEpsilon is returned by [Merge] and [Topology] when any
	// tolerance is negative. Zero tolerances are replaced by defaults.
	ErrNegativeEpsilon = errors.New("epsilon values must not be negative")
)

// Epsilon holds the tolerance radii, in world units, for the three
// proximity test kinds.
type Epsilon struct {
	// Endpoints is the welding radius: polyline endpoints within this
	// distance of a canonical vertex are unified with it.
	Endpoints float64 `json:"endpoints"`

	// Intersection is the radius for deduplicating intersection vertices
	// and for discarding crossings that land on an existing endpoint.
	Intersection float64 `json:"intersection"`

	// ShortSegment is the minimum surviving edge length; shorter
	// sub-edges produced by splitting are dropped.
	ShortSegment float64 `json:"shortSegment"`
}

// DefaultEpsilon returns the tolerances used when the caller leaves a
// field zero. Units are meters, matching scene world units.
func DefaultEpsilon() Epsilon {
	return Epsilon{
		Endpoints:    0.01,
		Intersection: 0.005,
		ShortSegment: 0.001,
	}
}

// DefaultQuantize rounds a coordinate to the micrometer grid. It is
// pure, monotonic, and idempotent on its own output, which the
// idempotence guarantee of [Merge] depends on.
func DefaultQuantize(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Options configures one normalization call.
type Options struct {
	// LayerID selects the layer to normalize. Required. Polylines on
	// other layers pass through unchanged.
	LayerID string

	// LayerName labels merged output polylines. Optional.
	LayerName string

	// Eps holds the proximity tolerances. Zero fields take defaults
	// from DefaultEpsilon.
	Eps Epsilon

	// NewVertexID mints globally unique point IDs. Defaults to
	// uuid.NewString. A colliding generator silently corrupts welding.
	NewVertexID func() string

	// Quantize snaps a coordinate before any comparison. Must be pure,
	// deterministic, and monotonic. Defaults to DefaultQuantize.
	Quantize func(float64) float64

	// Logger receives debug-level stage reporting. Defaults to a
	// discarding logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.LayerID == "" {
		return ErrMissingLayerID
	}
	if o.Eps.Endpoints < 0 || o.Eps.Intersection < 0 || o.Eps.ShortSegment < 0 {
		return ErrNegativeEpsilon
	}
	def := DefaultEpsilon()
	if o.Eps.Endpoints == 0 {
		o.Eps.Endpoints = def.Endpoints
	}
	if o.Eps.Intersection == 0 {
		o.Eps.Intersection = def.Intersection
	}
	if o.Eps.ShortSegment == 0 {
		o.Eps.ShortSegment = def.ShortSegment
	}
	if o.NewVertexID == nil {
		o.NewVertexID = uuid.NewString
	}
	if o.Quantize == nil {
		o.Quantize = DefaultQuantize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Stats reports the intermediate sizes of one normalization call.
type Stats struct {
	Lines      int // polylines on the target layer
	Segments   int // segments after welding and degenerate filtering
	Splits     int // intersection splits recorded
	Edges      int // fine edges after short-edge filtering
	Components int // connected components in the merged network
}

// Result is the outcome of one normalization call.
type Result struct {
	// Polylines is the full shape list: other layers unchanged, in draw
	// order, followed by the merged shapes for the target layer.
	Polylines []sketch.Polyline

	// LineIDMap maps every original line ID that contributed a surviving
	// edge to its merged line ID. Nil when nothing was merged.
	LineIDMap map[string]string

	// Changed reports whether the shape count or any shape's point count
	// differs from the input.
	Changed bool

	Stats Stats
}

// Merge normalizes the polylines of opts.LayerID and returns the updated
// shape list. Polylines on other layers pass through untouched. When the
// layer has no polylines, or no edges survive filtering, the input is
// returned unchanged with Changed false.
//
// Merge never fails on geometry; the only errors are option contract
// violations.
func Merge(polylines []sketch.Polyline, opts Options) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}

	layerLines := selectLayer(polylines, opts.LayerID)
	if len(layerLines) == 0 {
		return Result{Polylines: polylines}, nil
	}

	net := buildNetwork(layerLines, opts)
	stats := net.stats()
	opts.Logger.Debugf("layer %s: %d lines, %d segments, %d splits, %d edges, %d components",
		opts.LayerID, stats.Lines, stats.Segments, stats.Splits, stats.Edges, stats.Components)

	if len(net.edges) == 0 {
		return Result{Polylines: polylines, Stats: stats}, nil
	}

	merged, lineIDMap := assemble(net, opts)

	next := make([]sketch.Polyline, 0, len(polylines)-len(layerLines)+len(merged))
	for _, p := range polylines {
		if p.LayerID != opts.LayerID {
			next = append(next, p)
		}
	}
	next = append(next, merged...)

	return Result{
		Polylines: next,
		LineIDMap: lineIDMap,
		Changed:   shapesDiffer(polylines, next),
		Stats:     stats,
	}, nil
}

// network is the per-call working set after every geometric stage.
type network struct {
	lines  int
	segs   []*segment
	splits int
	edges  []edge
	comps  []component
}

func (n network) stats() Stats {
	return Stats{
		Lines:      n.lines,
		Segments:   len(n.segs),
		Splits:     n.splits,
		Edges:      len(n.edges),
		Components: len(n.comps),
	}
}

// buildNetwork runs registration, welding, segment building, intersection
// resolution, edge emission, and component discovery over one layer's
// polylines. Point coordinates and IDs are mutated in place.
func buildNetwork(layerLines []sketch.Polyline, opts Options) network {
	cell := math.Max(opts.Eps.Endpoints, opts.Eps.Intersection)
	reg := newRegistry(cell, opts.Quantize, opts.NewVertexID)

	weldEndpoints(layerLines, reg, opts.Eps.Endpoints)

	segs := buildSegments(layerLines, reg)
	splits := resolveIntersections(segs, reg, opts.Eps)
	edges := buildEdges(segs, opts.Eps)

	return network{
		lines:  len(layerLines),
		segs:   segs,
		splits: splits,
		edges:  edges,
		comps:  components(edges),
	}
}

// weldEndpoints registers every point of every polyline, welding first
// and last points onto the nearest canonical vertex within the endpoint
// tolerance. A welded point takes the canonical vertex's ID and
// coordinates, so coincident-within-tolerance endpoints share one vertex
// and one point ID downstream.
func weldEndpoints(lines []sketch.Polyline, reg *registry, radius float64) {
	for _, pl := range lines {
		pts := pl.Points
		for i := range pts {
			p := &pts[i]
			if i == 0 || i == len(pts)-1 {
				p.X = reg.quantize(p.X)
				p.Y = reg.quantize(p.Y)
				if v := reg.findNearby(p.X, p.Y, radius); v != nil {
					p.ID, p.X, p.Y = v.id, v.x, v.y
					continue
				}
			}
			reg.registerFromPoint(p)
		}
	}
}

// assemble walks each component into a polyline and builds the
// original-to-merged line ID mapping. Merged IDs hash the sorted
// contributing line IDs, so identical input topology always yields the
// same ID. Rarely, short-edge filtering can split one source line into
// two components with identical contributor sets; later components get
// an ordinal suffix to keep IDs unique.
func assemble(net network, opts Options) ([]sketch.Polyline, map[string]string) {
	merged := make([]sketch.Polyline, 0, len(net.comps))
	lineIDMap := make(map[string]string)
	seen := make(map[string]int)

	for _, comp := range net.comps {
		seq := walkComponent(net.edges, comp)
		if len(seq) < 2 {
			continue
		}

		id := mergedID(opts.LayerID, comp.lineIDs)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = joinID(id, n)
		}

		pts := make([]sketch.Point, len(seq))
		for i, v := range seq {
			pts[i] = sketch.Point{ID: v.id, X: v.x, Y: v.y}
		}
		merged = append(merged, sketch.Polyline{
			ID:      id,
			LayerID: opts.LayerID,
			Name:    opts.LayerName,
			Points:  pts,
		})
		for _, lid := range comp.lineIDs {
			lineIDMap[lid] = id
		}
	}

	if len(merged) == 0 {
		return nil, nil
	}
	return merged, lineIDMap
}

// mergedID derives a stable identifier from the layer and the sorted
// contributing source line IDs.
func mergedID(layerID string, lineIDs []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lineIDs, "\n")))
	return "merged-" + layerID + "-" + hex.EncodeToString(sum[:])[:12]
}

func joinID(id string, n int) string {
	return id + "-" + strconv.Itoa(n)
}

func selectLayer(polylines []sketch.Polyline, layerID string) []sketch.Polyline {
	var out []sketch.Polyline
	for _, p := range polylines {
		if p.LayerID == layerID {
			out = append(out, p)
		}
	}
	return out
}

// shapesDiffer compares shape counts and the multiset of per-shape point
// counts. Output order intentionally differs from input order (merged
// shapes move to the end), so the comparison is order-insensitive.
func shapesDiffer(before, after []sketch.Polyline) bool {
	if len(before) != len(after) {
		return true
	}
	counts := make(map[int]int, len(before))
	for _, p := range before {
		counts[len(p.Points)]++
	}
	for _, p := range after {
		counts[len(p.Points)]--
	}
	for _, n := range counts {
		if n != 0 {
			return true
		}
	}
	return false
}
