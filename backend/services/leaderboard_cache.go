package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLeaderboardCache keeps serialized leaderboards in Redis with a TTL.
type RedisLeaderboardCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLeaderboardCache(client redis.UniversalClient, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client, ttl: ttl}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, key string, entries []LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
