package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long an abandoned dialogue lingers in Redis. The
// in-memory store applies no TTL; an external cache deployment already
// implies bounded retention, so keys expire after a day there.
const StateTTL = 24 * time.Hour

// RedisStore backs the dialog state with Redis so that multiple
// instances share conversation state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using the given URL
// (redis://[:password@]host:port[/db]) and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func stateKey(sessionID string) string {
	return fmt.Sprintf("dialog:%s", sessionID)
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*State, error) {
	raw, err := r.client.Get(ctx, stateKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to get dialog state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dialog state: %w", err)
	}
	return &state, nil
}

func (r *RedisStore) Set(ctx context.Context, sessionID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog state: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(sessionID), raw, StateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set dialog state: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete dialog state: %w", err)
	}
	return nil
}
