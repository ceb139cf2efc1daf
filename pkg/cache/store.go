// Package cache provides the tiered verdict cache: a Redis backend with an
// in-process fallback behind one Store interface, plus the TTL policy that
// maps verdicts to lifetimes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NoExpiry marks an entry that never expires
const NoExpiry time.Duration = 0

// Stats describes the backend state for health reporting
type Stats struct {
	Type       string `json:"type"`
	Connected  bool   `json:"connected"`
	Keys       int64  `json:"keys"`
	MemoryUsed string `json:"memory_used,omitempty"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
}

// Store is a K→V store with per-entry TTL. Both backends behave
// identically apart from the Stats shape.
type Store interface {
	// Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value; ttl NoExpiry keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) Stats
}

// URLKey builds the verdict cache key for a URL
func URLKey(rawURL string) string {
	return "url_analysis:" + hashID(strings.ToLower(strings.TrimSpace(rawURL)))
}

// SourceKey builds the cache key for a per-source threat intel record
func SourceKey(source, identifier string) string {
	return "threatintel:" + source + ":" + hashID(identifier)
}

func hashID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}
