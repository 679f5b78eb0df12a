package store

import (
	"context"
	"sort"
	"sync"

	"github.com/harmonyhq/linework/pkg/sketch"
)

// MemoryStore is an in-memory Store for tests and single-process use.
// Scenes are deep-copied on the way in and out, so callers can mutate
// what they hold without affecting the stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	scenes map[string]*sketch.Scene
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenes: make(map[string]*sketch.Scene)}
}

// GetScene returns a copy of the stored scene, or ErrNotFound.
func (m *MemoryStore) GetScene(ctx context.Context, id string) (*sketch.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// PutScene stores a copy of the scene keyed by its ID.
func (m *MemoryStore) PutScene(ctx context.Context, s *sketch.Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[s.ID] = s.Clone()
	return nil
}

// DeleteScene removes the scene, or returns ErrNotFound.
func (m *MemoryStore) DeleteScene(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(m.scenes, id)
	return nil
}

// ListScenes returns scene summaries sorted by ID.
func (m *MemoryStore) ListScenes(ctx context.Context) ([]SceneInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SceneInfo, 0, len(m.scenes))
	for _, s := range m.scenes {
		out = append(out, Info(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close does nothing for the in-memory store.
func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
