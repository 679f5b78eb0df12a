package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonyhq/linework/pkg/cache"
	apperrors "github.com/harmonyhq/linework/pkg/errors"
	"github.com/harmonyhq/linework/pkg/merge"
	"github.com/harmonyhq/linework/pkg/sketch"
	"github.com/harmonyhq/linework/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListScenes(r.Context())
	if err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "list scenes"))
		return
	}
	if infos == nil {
		infos = []store.SceneInfo{}
	}
	respondJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	scene, err := decodeScene(r.Body)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if scene.ID == "" {
		scene.ID = uuid.NewString()
	}
	if err := s.store.PutScene(r.Context(), scene); err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store scene %s", scene.ID))
		return
	}
	respondJSON(w, http.StatusCreated, scene)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sceneID")
	scene, err := s.store.GetScene(r.Context(), id)
	if err != nil {
		s.respondError(w, sceneError(id, err))
		return
	}
	respondJSON(w, http.StatusOK, scene)
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sceneID")
	scene, err := decodeScene(r.Body)
	if err != nil {
		s.respondError(w, err)
		return
	}
	scene.ID = id
	if err := s.store.PutScene(r.Context(), scene); err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store scene %s", id))
		return
	}
	respondJSON(w, http.StatusOK, scene)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sceneID")
	if err := s.store.DeleteScene(r.Context(), id); err != nil {
		s.respondError(w, sceneError(id, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mergeRequest carries per-call tolerance overrides. Zero fields fall
// back to the server's configured defaults.
type mergeRequest struct {
	Eps merge.Epsilon `json:"eps"`
}

// mergeResponse is the result of a layer merge.
type mergeResponse struct {
	Scene     *sketch.Scene     `json:"scene"`
	LineIDMap map[string]string `json:"lineIdMap,omitempty"`
	Changed   bool              `json:"changed"`
	Stats     merge.Stats       `json:"stats"`
	Cached    bool              `json:"cached"`
}

// cachedMerge is the cacheable part of a merge: the merged layer shapes
// plus the mapping. The surrounding scene is reassembled per call, so a
// stale cache entry can never leak another layer's old shapes.
type cachedMerge struct {
	Merged    []sketch.Polyline `json:"merged"`
	LineIDMap map[string]string `json:"lineIdMap,omitempty"`
	Changed   bool              `json:"changed"`
	Stats     merge.Stats       `json:"stats"`
}

func (s *Server) handleMergeLayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sceneID := chi.URLParam(r, "sceneID")
	layerID := chi.URLParam(r, "layerID")

	var req mergeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode merge request"))
			return
		}
	}
	// Field-wise override: a zero field keeps the server's configured
	// tolerance. Negative values pass through so merge validation can
	// reject them.
	eps := s.cfg.Merge.Epsilon()
	if req.Eps.Endpoints != 0 {
		eps.Endpoints = req.Eps.Endpoints
	}
	if req.Eps.Intersection != 0 {
		eps.Intersection = req.Eps.Intersection
	}
	if req.Eps.ShortSegment != 0 {
		eps.ShortSegment = req.Eps.ShortSegment
	}

	scene, err := s.store.GetScene(ctx, sceneID)
	if err != nil {
		s.respondError(w, sceneError(sceneID, err))
		return
	}

	layer, ok := scene.Layer(layerID)
	if !ok && len(scene.Layers) > 0 {
		s.respondError(w, apperrors.New(apperrors.ErrCodeInvalidLayer, "layer %s not found in scene %s", layerID, sceneID))
		return
	}

	layerShapes := scene.LayerPolylines(layerID)
	key, err := mergeCacheKey(layerShapes, layerID, eps)
	if err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "hash layer shapes"))
		return
	}

	var cm cachedMerge
	cached := false
	if data, hit, cerr := s.cache.Get(ctx, key); cerr == nil && hit {
		if json.Unmarshal(data, &cm) == nil {
			cached = true
		}
	}

	if !cached {
		res, merr := merge.Merge(layerShapes, merge.Options{
			LayerID:   layerID,
			LayerName: layer.Name,
			Eps:       eps,
			Logger:    s.logger,
		})
		if merr != nil {
			s.respondError(w, apperrors.Wrap(apperrors.ErrCodeInvalidEpsilon, merr, "merge layer %s", layerID))
			return
		}
		cm = cachedMerge{
			Merged:    res.Polylines,
			LineIDMap: res.LineIDMap,
			Changed:   res.Changed,
			Stats:     res.Stats,
		}
		if data, jerr := json.Marshal(cm); jerr == nil {
			_ = s.cache.Set(ctx, key, data, s.cfg.Cache.TTL())
		}
	}

	next := make([]sketch.Polyline, 0, len(scene.Polylines))
	for _, p := range scene.Polylines {
		if p.LayerID != layerID {
			next = append(next, p)
		}
	}
	next = append(next, cm.Merged...)
	scene.Polylines = next

	if err := s.store.PutScene(ctx, scene); err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store scene %s", sceneID))
		return
	}

	respondJSON(w, http.StatusOK, mergeResponse{
		Scene:     scene,
		LineIDMap: cm.LineIDMap,
		Changed:   cm.Changed,
		Stats:     cm.Stats,
		Cached:    cached,
	})
}

// mergeCacheKey hashes the layer's shapes and tolerances. Merge mutates
// its input, so the hash is taken before normalization runs.
func mergeCacheKey(layerShapes []sketch.Polyline, layerID string, eps merge.Epsilon) (string, error) {
	data, err := json.Marshal(layerShapes)
	if err != nil {
		return "", err
	}
	return cache.MergeKey(cache.Hash(data), cache.MergeKeyOpts{
		LayerID:      layerID,
		Endpoints:    eps.Endpoints,
		Intersection: eps.Intersection,
		ShortSegment: eps.ShortSegment,
	}), nil
}

func decodeScene(r io.Reader) (*sketch.Scene, error) {
	scene, err := sketch.ReadScene(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidScene, err, "decode scene")
	}
	return scene, nil
}

func sceneError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.New(apperrors.ErrCodeSceneNotFound, "scene %s not found", id)
	}
	return apperrors.Wrap(apperrors.ErrCodeStore, err, "load scene %s", id)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("%v", err)
	}
	respondJSON(w, status, errorResponse{Code: code, Message: apperrors.UserMessage(err)})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidScene, apperrors.ErrCodeInvalidEpsilon:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvalidLayer, apperrors.ErrCodeNotFound,
		apperrors.ErrCodeSceneNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
