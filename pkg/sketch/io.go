package sketch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrDuplicatePolylineID is returned by scene readers when two
	// polylines share an ID. Polyline IDs must be unique per scene.
	ErrDuplicatePolylineID = errors.New("duplicate polyline ID")

	// ErrUnknownLayer is returned by scene readers when a polyline
	// references a layer that is not declared in the scene and the scene
	// declares at least one layer. Scenes without a layer list are
	// accepted as-is.
	ErrUnknownLayer = errors.New("polyline references unknown layer")
)

// MarshalScene converts a scene to indented JSON bytes.
func MarshalScene(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScene(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteScene encodes a scene as JSON and writes it to w.
func WriteScene(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSceneFile writes a scene to a JSON file at path.
// The file is created with 0644 permissions.
func WriteSceneFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteScene(s, f)
}

// ReadScene decodes a JSON scene from r and validates it.
//
// ReadScene returns an error if the JSON is malformed, if two polylines
// share an ID ([ErrDuplicatePolylineID]), or if a polyline references a
// layer missing from a non-empty layer list ([ErrUnknownLayer]). Errors
// are wrapped with the offending polyline ID.
func ReadScene(r io.Reader) (*Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validateScene(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadSceneFile reads and validates a JSON scene file at path.
func ReadSceneFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadScene(f)
}

func validateScene(s *Scene) error {
	seen := make(map[string]bool, len(s.Polylines))
	layers := make(map[string]bool, len(s.Layers))
	for _, l := range s.Layers {
		layers[l.ID] = true
	}
	for _, p := range s.Polylines {
		if p.ID != "" && seen[p.ID] {
			return fmt.Errorf("polyline %s: %w", p.ID, ErrDuplicatePolylineID)
		}
		seen[p.ID] = true
		if len(layers) > 0 && p.LayerID != "" && !layers[p.LayerID] {
			return fmt.Errorf("polyline %s: %w (%s)", p.ID, ErrUnknownLayer, p.LayerID)
		}
	}
	return nil
}
