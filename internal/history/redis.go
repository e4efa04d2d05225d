package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:history:"

// RedisStore keeps session history in a Redis list, trimmed to the cap on
// every append. Sessions expire after the TTL so abandoned conversations do
// not accumulate.
type RedisStore struct {
	client *redis.Client
	cap    int
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, capacity int, ttl time.Duration) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, cap: capacity, ttl: ttl}
}

func sessionKey(sessionID string) string { return keyPrefix + sessionID }

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]Entry, error) {
	vals, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("history get %s: %w", sessionID, err)
	}

	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	vals := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal history entry: %w", err)
		}
		vals = append(vals, data)
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, vals...)
	pipe.LTrim(ctx, key, int64(-s.cap), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history append %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("history clear %s: %w", sessionID, err)
	}
	return n > 0, nil
}
