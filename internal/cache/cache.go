// Package cache stores rendered PDFs keyed by document fingerprint.
//
// Backends share the Cache interface: a file cache for the CLI, a Redis
// cache for render workers that share results, and a null cache when
// caching is disabled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "pagepdf:pdf:"

// Cache is a byte store with optional expiration. Get reports a miss with
// ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// PDFKey returns the cache key of the PDF rendered for fingerprint at
// renderVersion. The target is already part of the fingerprint.
func PDFKey(fingerprint string, renderVersion int) string {
	return KeyPrefix + "v" + strconv.Itoa(renderVersion) + ":" + fingerprint
}

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Open returns the backend named by location: an empty string or "off"
// disables caching, a redis:// or rediss:// URL selects Redis, and anything
// else is a directory for the file cache.
func Open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "" || location == "off":
		return NullCache{}, nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		c, err := NewRedisCache(ctx, location)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := NewFileCache(location)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
