package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/config"
)

// RedisStore is the preferred cache backend
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a
// 2-second ping. Callers fall back to the in-memory store on error.
func NewRedisStore(cfg config.CacheConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		DB:           cfg.RedisDB,
		Password:     cfg.RedisPassword,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger.With().Str("component", "cache").Str("backend", "redis").Logger(),
	}, nil
}

// Get returns the value for key, or found=false on miss
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores the value; NoExpiry keeps the key until deleted
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == NoExpiry {
		return s.client.Set(ctx, key, value, 0).Err()
	}
	return s.client.SetEx(ctx, key, value, ttl).Err()
}

// Delete removes the key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Exists reports whether the key is present
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear flushes the whole database
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}

// Stats reports key count, memory use, and hit counters from INFO
func (s *RedisStore) Stats(ctx context.Context) Stats {
	stats := Stats{Type: "redis"}

	keys, err := s.client.DBSize(ctx).Result()
	if err != nil {
		s.logger.Error().Err(err).Msg("stats query failed")
		return stats
	}
	stats.Connected = true
	stats.Keys = keys

	if info, err := s.client.Info(ctx, "memory", "stats").Result(); err == nil {
		for _, line := range strings.Split(info, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "used_memory_human:"):
				stats.MemoryUsed = strings.TrimPrefix(line, "used_memory_human:")
			case strings.HasPrefix(line, "keyspace_hits:"):
				stats.Hits, _ = strconv.ParseInt(strings.TrimPrefix(line, "keyspace_hits:"), 10, 64)
			case strings.HasPrefix(line, "keyspace_misses:"):
				stats.Misses, _ = strconv.ParseInt(strings.TrimPrefix(line, "keyspace_misses:"), 10, 64)
			}
		}
	}

	return stats
}

// Close releases the client connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
