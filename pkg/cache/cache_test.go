package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestMergeKey(t *testing.T) {
	opts := MergeKeyOpts{LayerID: "l1", Endpoints: 0.01, Intersection: 0.005, ShortSegment: 0.001}

	// Same inputs produce the same key
	k1 := MergeKey("hash123", opts)
	k2 := MergeKey("hash123", opts)
	if k1 != k2 {
		t.Error("MergeKey should be deterministic")
	}

	// Different shapes hash produces a different key
	if k1 == MergeKey("hash456", opts) {
		t.Error("Different shape hashes should produce different keys")
	}

	// Different tolerances produce a different key
	loose := opts
	loose.Endpoints = 0.1
	if k1 == MergeKey("hash123", loose) {
		t.Error("Different tolerances should produce different keys")
	}

	// Different layers produce a different key
	other := opts
	other.LayerID = "l2"
	if k1 == MergeKey("hash123", other) {
		t.Error("Different layers should produce different keys")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Set then Get
	want := []byte("merged shapes")
	if err := c.Set(ctx, "key", want, 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	// Delete then miss
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestFileCache_NamespacedLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// A merge key lands under the merge/ namespace directory.
	if err := c.Set(ctx, "merge:abc123", []byte("result"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "merge", "*", "*.json"))
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("merge namespace files = %d, want 1", len(files))
	}

	// A key without a namespace prefix falls back to entries/.
	if err := c.Set(ctx, "plainkey", []byte("result"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	files, err = filepath.Glob(filepath.Join(dir, "entries", "*", "*.json"))
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("entries namespace files = %d, want 1", len(files))
	}

	// No leftover temp files from the atomic write.
	tmps, err := filepath.Glob(filepath.Join(dir, "*", "*", ".entry-*"))
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(tmps) != 0 {
		t.Errorf("leftover temp files: %v", tmps)
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "merge:abc", []byte("result"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "merge", "*", "*.json"))
	if len(files) != 1 {
		t.Fatalf("cached files = %d, want 1", len(files))
	}
	if err := os.WriteFile(files[0], []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}

	_, hit, err := c.Get(ctx, "merge:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("corrupt entry should miss")
	}
	if _, serr := os.Stat(files[0]); !os.IsNotExist(serr) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Negative TTL means no expiration metadata is written, so the entry
	// persists; a tiny positive TTL expires.
	if err := c.Set(ctx, "short", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expired entry should miss")
	}
}
