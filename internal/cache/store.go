// Package cache provides the response cache for the API: a KeyStore-backed
// store with typed get/set, glob pattern invalidation, and a read-through
// HTTP middleware with weak ETag validation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// KeyPrefix namespaces every response cache key.
const KeyPrefix = "cache:"

// Key derives the cache key for a request URI (path plus raw query). The key
// is query-order sensitive: two query strings with the same parameters in a
// different order address distinct entries.
func Key(requestURI string) string {
	return KeyPrefix + requestURI
}

// Store wraps a KeyStore with JSON serialization and the business-level
// invalidation operations the write paths call.
type Store struct {
	ks  KeyStore
	log zerolog.Logger
}

// NewStore creates a cache store on top of ks.
func NewStore(ks KeyStore) *Store {
	return &Store{
		ks:  ks,
		log: log.With().Str("component", "cache").Logger(),
	}
}

// GetRaw fetches the exact stored payload bytes. A missing key returns
// ok=false with no error.
func (s *Store) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	return s.ks.Get(ctx, key)
}

// SetRaw stores payload bytes verbatim with the given TTL.
func (s *Store) SetRaw(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return s.ks.SetEx(ctx, key, payload, ttl)
}

// Get fetches key and unmarshals it into dst. Returns false on miss; a miss
// is never an error.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok, err := s.ks.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("unmarshal cache entry %q: %w", key, err)
	}
	return true, nil
}

// Set serializes v as JSON and stores it with the given TTL.
func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry %q: %w", key, err)
	}
	return s.ks.SetEx(ctx, key, b, ttl)
}

// Del removes key unconditionally. Deleting an absent key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.ks.Del(ctx, key)
}

// InvalidatePattern deletes every key matching a glob pattern in one batch.
// An empty match set performs no store call. Failures propagate: the callers
// are write operations, and serving stale reads after a successful write is
// worse than failing the write's side effect loudly.
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) error {
	keys, err := s.ks.Keys(ctx, pattern)
	if err != nil {
		Errors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("enumerate keys %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.ks.Del(ctx, keys...); err != nil {
		Errors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("delete keys %q: %w", pattern, err)
	}
	InvalidatedKeys.Add(float64(len(keys)))
	s.log.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("cache invalidated")
	return nil
}

// InvalidateListing drops the cached single-resource views and the cached
// collection views for a listing. This helper (with InvalidateBooking below)
// is the only place that maps "what changed" to "which cached URL shapes may
// be stale"; a new cached listing route must extend it or risk serving stale
// data for a full TTL window.
func (s *Store) InvalidateListing(ctx context.Context, listingID int64) error {
	if err := s.InvalidatePattern(ctx, fmt.Sprintf("%s/listings/%d*", KeyPrefix, listingID)); err != nil {
		return err
	}
	// '[?]' anchors the match to the literal query separator; a bare '?' is a
	// one-character wildcard in redis globs and would swallow every
	// per-listing key too.
	return s.InvalidatePattern(ctx, KeyPrefix+"/listings[?]*")
}

// InvalidateBooking drops the cached availability view for a listing after a
// booking-side write.
func (s *Store) InvalidateBooking(ctx context.Context, listingID int64) error {
	return s.InvalidatePattern(ctx, fmt.Sprintf("%s/listings/%d/availability*", KeyPrefix, listingID))
}
