package cache

import (
	"context"
	"time"

	"quantum/internal/storage"

	"github.com/redis/go-redis/v9"
)

// SnapshotTTL bounds staleness of cached snapshots. Writes go through the
// cache, so the TTL only matters when another process mutates the database.
const SnapshotTTL = 5 * time.Minute

// Store wraps a storage.Store with a Redis cache-aside layer. A nil Redis
// client makes every call pass straight through to the underlying store.
type Store struct {
	next storage.Store
	rdb  *redis.Client
	ttl  time.Duration
}

// Wrap returns a cached view of next.
func Wrap(next storage.Store, rdb *redis.Client) *Store {
	return &Store{next: next, rdb: rdb, ttl: SnapshotTTL}
}

// Load tries Redis first, on miss reads the underlying store and populates
// the cache best-effort.
func (s *Store) Load(ctx context.Context, key string, dest any) (bool, error) {
	found, err := GetJSON(ctx, s.rdb, key, dest)
	if err == nil && found {
		return true, nil
	}
	// Cache errors degrade to a plain read.

	found, err = s.next.Load(ctx, key, dest)
	if err != nil || !found {
		return found, err
	}
	_ = SetJSON(ctx, s.rdb, key, dest, s.ttl)
	return true, nil
}

// Save writes through: the underlying store first, then the cache best-effort.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	if err := s.next.Save(ctx, key, v); err != nil {
		return err
	}
	_ = SetJSON(ctx, s.rdb, key, v, s.ttl)
	return nil
}

// Delete removes the key from both layers.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.next.Delete(ctx, key); err != nil {
		return err
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, key)
	}
	return nil
}

// Ping forwards health checks to the underlying store when it supports them.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the underlying store's resources.
func (s *Store) Close() error {
	if c, ok := s.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
