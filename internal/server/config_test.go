package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harmonyhq/linework/pkg/merge"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %s, want memory", cfg.Store.Backend)
	}
	if cfg.Merge.Epsilon() != merge.DefaultEpsilon() {
		t.Errorf("Merge tolerances = %+v, want defaults", cfg.Merge.Epsilon())
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
addr = ":9090"

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl_minutes = 5

[merge]
weld_eps = 0.1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %s, want :9090", cfg.Addr)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("Store = %+v, want mongo overrides", cfg.Store)
	}
	// Values absent from the file keep their defaults.
	if cfg.Store.MongoDatabase != "linework" {
		t.Errorf("MongoDatabase = %s, want default linework", cfg.Store.MongoDatabase)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v, want redis overrides", cfg.Cache)
	}
	if cfg.Cache.TTL() != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", cfg.Cache.TTL())
	}
	if cfg.Merge.WeldEps != 0.1 {
		t.Errorf("WeldEps = %v, want 0.1", cfg.Merge.WeldEps)
	}
	if cfg.Merge.IntersectEps != merge.DefaultEpsilon().Intersection {
		t.Errorf("IntersectEps = %v, want default", cfg.Merge.IntersectEps)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.toml"); err == nil {
		t.Error("LoadConfig accepted a missing file")
	}
}
