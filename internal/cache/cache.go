// Package cache implements the BFF response cache: an in-process TTL map,
// optionally fronted by Redis for cross-process consistency. The cache is
// never a hard dependency; any Redis failure degrades to the local tier.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a dual-tier TTL cache with pattern-based invalidation
type Store struct {
	redis  *redis.Client // nil when the external tier is not configured
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]entry

	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// New creates a cache store. redisClient may be nil; sweepInterval controls
// the background eviction of expired local entries. Correctness never depends
// on the sweep: Get re-checks expiry before returning a value.
func New(redisClient *redis.Client, logger *zap.Logger, sweepInterval time.Duration) *Store {
	s := &Store{
		redis:   redisClient,
		logger:  logger,
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}

	return s
}

// Get loads the value stored under key into dest. It returns false on a miss.
// The external tier is consulted first; on any external-tier error the local
// tier answers instead.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(raw, dest); err != nil {
				return false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
			}
			return true, nil
		case errors.Is(err, redis.Nil):
			// fall through to the local tier
		default:
			s.logger.Warn("redis get failed, falling back to local tier",
				zap.String("key", key), zap.Error(err))
		}
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// Lazy expiry: an expired entry behaves exactly like a miss
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.value, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}

	return true, nil
}

// Set stores value under key in both tiers. A Redis write failure is logged
// and swallowed; the local write always happens.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
			s.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.entries[key] = entry{value: raw, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	return nil
}

// Invalidate removes key from both tiers
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if s.redis != nil {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			s.logger.Warn("redis delete failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return nil
}

// InvalidatePattern removes every key matching pattern from both tiers.
// Patterns carry at most a single leading or trailing '*'; a bare key is an
// exact match. The local removal completes before the call returns, so a
// subsequent hit can never observe a logically-removed value.
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) error {
	if s.redis != nil {
		keys, err := s.redis.Keys(ctx, pattern).Result()
		if err != nil {
			s.logger.Warn("redis pattern scan failed", zap.String("pattern", pattern), zap.Error(err))
		} else if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				s.logger.Warn("redis pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
			}
		}
	}

	s.mu.Lock()
	for key := range s.entries {
		if matchPattern(pattern, key) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()

	return nil
}

// Clear flushes both tiers entirely. Administrative/test use only.
func (s *Store) Clear(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.FlushDB(ctx).Err(); err != nil {
			s.logger.Warn("redis flush failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	return nil
}

// Close stops the background sweep. The Redis client is owned by the caller.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// matchPattern supports a single wildcard: "prefix:*", "*:suffix", "*mid*"
// or an exact key. This mirrors the glob subset Redis KEYS is given.
func matchPattern(pattern, key string) bool {
	leading := strings.HasPrefix(pattern, "*")
	trailing := strings.HasSuffix(pattern, "*")
	core := strings.Trim(pattern, "*")

	switch {
	case leading && trailing:
		return strings.Contains(key, core)
	case trailing:
		return strings.HasPrefix(key, core)
	case leading:
		return strings.HasSuffix(key, core)
	default:
		return key == pattern
	}
}
