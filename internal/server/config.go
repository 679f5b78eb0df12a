package server

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/harmonyhq/linework/pkg/merge"
)

// Config is the TOML configuration for the linework HTTP API.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	Store StoreConfig `toml:"store"`
	Cache CacheConfig `toml:"cache"`
	Merge MergeConfig `toml:"merge"`
}

// StoreConfig selects the scene persistence backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend       string `toml:"backend"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the merge result cache backend.
type CacheConfig struct {
	// Backend is "none", "file", or "redis".
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLMinutes    int    `toml:"ttl_minutes"`
}

// MergeConfig holds the default normalization tolerances, in world units.
// Requests can override them per call.
type MergeConfig struct {
	WeldEps      float64 `toml:"weld_eps"`
	IntersectEps float64 `toml:"intersect_eps"`
	ShortEps     float64 `toml:"short_eps"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	eps := merge.DefaultEpsilon()
	return Config{
		Addr: ":8080",
		Store: StoreConfig{
			Backend:       "memory",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "linework",
		},
		Cache: CacheConfig{
			Backend:    "none",
			RedisAddr:  "localhost:6379",
			TTLMinutes: 60,
		},
		Merge: MergeConfig{
			WeldEps:      eps.Endpoints,
			IntersectEps: eps.Intersection,
			ShortEps:     eps.ShortSegment,
		},
	}
}

// LoadConfig reads a TOML config file over the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Epsilon converts the configured tolerances to merge options.
func (c MergeConfig) Epsilon() merge.Epsilon {
	return merge.Epsilon{
		Endpoints:    c.WeldEps,
		Intersection: c.IntersectEps,
		ShortSegment: c.ShortEps,
	}
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
