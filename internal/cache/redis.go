package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production quote-cache backend: a thin wrapper over
// go-redis that implements Store's fire-and-forget semantics. It never
// returns "not found" as an error — only as found=false — so ingesters and
// readers can treat a cold cache exactly like a just-started one.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration // best-effort expiry backstop; the bucket ring is the real freshness mechanism
}

// NewRedisStore dials a Redis instance at addr (host:port).
func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{rdb: rdb, ttl: 2 * time.Minute}
}

func (s *RedisStore) SetInt(ctx context.Context, key string, v int64) error {
	if err := s.rdb.Set(ctx, key, v, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set_int %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetInt(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get_int %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) SetDict(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal dict: %w", err)
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set_dict %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetDict(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get_dict %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal dict %s: %w", key, err)
	}
	return true, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
