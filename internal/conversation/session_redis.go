package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "vacancybot:session:"

// RedisSessions stores conversation states in Redis so that they survive
// restarts and can be shared between bot replicas.
type RedisSessions struct {
	rdb redis.Cmdable
	ttl time.Duration // 0 keeps keys forever
}

// NewRedisSessions returns a SessionStore backed by rdb.
func NewRedisSessions(rdb redis.Cmdable, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, chatID)
}

// Load implements SessionStore.
func (r *RedisSessions) Load(ctx context.Context, chatID int64) (State, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return StateIdle, nil
	}
	if err != nil {
		return StateIdle, fmt.Errorf("redis get session: %w", err)
	}
	return ParseState(raw)
}

// Save implements SessionStore.
func (r *RedisSessions) Save(ctx context.Context, chatID int64, s State) error {
	if err := r.rdb.Set(ctx, sessionKey(chatID), string(s), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
