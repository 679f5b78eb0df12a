package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// namespacedKey builds a cache key of the form "<namespace>:<hash>",
// hashing the JSON encoding of the parts. The namespace survives in the
// key so backends can group entries by family; the full SHA-256 keeps
// distinct merge inputs from ever colliding.
func namespacedKey(namespace string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return namespace + ":" + Hash(data)
}

// Hash returns the SHA-256 of data as a 64-character hex string. It is
// the content hash used for layer shapes when keying merge results.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
