// Package sketch defines the scene data model shared by the normalizer,
// the CLI, and the HTTP API.
//
// A scene is a flat list of polylines grouped into named layers. Polylines
// are drawn independently by the user, so within a layer they may overlap,
// cross, or nearly touch without being topologically connected. The
// [github.com/harmonyhq/linework/pkg/merge] package turns one layer's
// polylines into a topologically consistent network.
package sketch

// Point is a single 2D coordinate in world units.
//
// The ID is assigned lazily: points drawn by the user start without one,
// and the normalizer mints an ID the first time the point is registered.
// After endpoint welding, several polylines may reference points carrying
// the same ID.
type Point struct {
	ID string  `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Polyline is an ordered sequence of points belonging to one layer.
// A polyline with fewer than two points contributes no segments to the
// merged network.
type Polyline struct {
	ID      string         `json:"id"`
	LayerID string         `json:"layerId"`
	Name    string         `json:"name,omitempty"`
	Points  []Point        `json:"points"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Clone returns a deep copy of the polyline.
// The normalizer mutates point coordinates and IDs in place during welding,
// so callers that need to keep the original should clone first.
func (p Polyline) Clone() Polyline {
	out := p
	out.Points = make([]Point, len(p.Points))
	copy(out.Points, p.Points)
	if p.Meta != nil {
		out.Meta = make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Layer is a named grouping of polylines. Normalization runs on one layer
// at a time; polylines on other layers pass through untouched.
type Layer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Scene is the persisted sketch document: layers plus every polyline
// across all layers, in draw order.
type Scene struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Layers    []Layer    `json:"layers,omitempty"`
	Polylines []Polyline `json:"polylines"`
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := &Scene{ID: s.ID, Name: s.Name}
	out.Layers = make([]Layer, len(s.Layers))
	copy(out.Layers, s.Layers)
	out.Polylines = make([]Polyline, len(s.Polylines))
	for i, p := range s.Polylines {
		out.Polylines[i] = p.Clone()
	}
	return out
}

// Layer returns the layer with the given ID and true, or a zero Layer and
// false if the scene has no such layer.
func (s *Scene) Layer(id string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// LayerPolylines returns the polylines assigned to the given layer,
// preserving draw order.
func (s *Scene) LayerPolylines(layerID string) []Polyline {
	var out []Polyline
	for _, p := range s.Polylines {
		if p.LayerID == layerID {
			out = append(out, p)
		}
	}
	return out
}
