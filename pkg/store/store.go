// Package store defines scene persistence for the linework HTTP API.
//
// The default backend is the in-memory [MemoryStore]; a MongoDB backend
// lives in the mongostore subpackage.
package store

import (
	"context"
	"errors"

	"github.com/harmonyhq/linework/pkg/sketch"
)

// ErrNotFound is returned when a requested scene does not exist.
var ErrNotFound = errors.New("scene not found")

// SceneInfo is a summary row for scene listings.
type SceneInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Layers    int    `json:"layers"`
	Polylines int    `json:"polylines"`
}

// Store persists scenes. Implementations must be safe for concurrent use.
type Store interface {
	// GetScene returns the scene with the given ID, or ErrNotFound.
	GetScene(ctx context.Context, id string) (*sketch.Scene, error)

	// PutScene creates or replaces the scene keyed by its ID.
	PutScene(ctx context.Context, s *sketch.Scene) error

	// DeleteScene removes the scene, or returns ErrNotFound.
	DeleteScene(ctx context.Context, id string) error

	// ListScenes returns a summary of every stored scene.
	ListScenes(ctx context.Context) ([]SceneInfo, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Info builds the summary row for a scene.
func Info(s *sketch.Scene) SceneInfo {
	return SceneInfo{
		ID:        s.ID,
		Name:      s.Name,
		Layers:    len(s.Layers),
		Polylines: len(s.Polylines),
	}
}
