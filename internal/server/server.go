// Package server implements the linework HTTP API.
//
// The API offers scene CRUD plus a per-layer merge endpoint that runs the
// normalizer, persists the updated scene, and returns the line ID
// mapping. Merge results are cached by content hash: normalization is
// deterministic, so equal inputs can be replayed from the cache safely.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harmonyhq/linework/pkg/cache"
	"github.com/harmonyhq/linework/pkg/store"
	"github.com/harmonyhq/linework/pkg/store/mongostore"
)

// Server handles the HTTP API over a scene store and a result cache.
type Server struct {
	store  store.Store
	cache  cache.Cache
	logger *log.Logger
	cfg    Config
}

// New creates a server over explicit backends. Used directly by tests;
// production wiring goes through NewFromConfig.
func New(st store.Store, c cache.Cache, logger *log.Logger, cfg Config) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Server{store: st, cache: c, logger: logger, cfg: cfg}
}

// NewFromConfig builds the configured store and cache backends and
// returns a ready server. The returned server owns the backends; Close
// releases them.
func NewFromConfig(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return New(st, c, logger, cfg), nil
}

func newStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "file":
		return cache.NewFileCache(cfg.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Backend)
	}
}

// Close releases the store and cache backends.
func (s *Server) Close(ctx context.Context) error {
	err := s.store.Close(ctx)
	if cerr := s.cache.Close(); err == nil {
		err = cerr
	}
	return err
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/scenes", func(r chi.Router) {
		r.Get("/", s.handleListScenes)
		r.Post("/", s.handleCreateScene)
		r.Route("/{sceneID}", func(r chi.Router) {
			r.Get("/", s.handleGetScene)
			r.Put("/", s.handlePutScene)
			r.Delete("/", s.handleDeleteScene)
			r.Post("/layers/{layerID}/merge", s.handleMergeLayer)
		})
	})
	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logRequests logs method, path, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
