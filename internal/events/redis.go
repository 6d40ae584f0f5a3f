// Package events publishes cache notifications to Redis subscribers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ChannelVacanciesCached receives one message per ingest that stored new rows.
const ChannelVacanciesCached = "EVENT_VACANCIES_CACHED"

// Publisher is the go-redis subset used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

var marshal = json.Marshal

// RedisNotifier publishes EVENT_VACANCIES_CACHED messages.
type RedisNotifier struct {
	rdb Publisher
	log *slog.Logger
}

// NewRedisNotifier returns a notifier publishing through rdb.
func NewRedisNotifier(rdb Publisher, log *slog.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, log: log}
}

// VacanciesCached publishes the event. Failures are logged, never returned.
func (n *RedisNotifier) VacanciesCached(ctx context.Context, keyword string, inserted int) {
	event, err := marshal(map[string]any{
		"type":     ChannelVacanciesCached,
		"keyword":  keyword,
		"inserted": inserted,
	})
	if err != nil {
		n.log.Warn("marshal "+ChannelVacanciesCached+" failed", "keyword", keyword, "err", err)
		return
	}
	if err := n.rdb.Publish(ctx, ChannelVacanciesCached, event).Err(); err != nil {
		n.log.Warn("publish "+ChannelVacanciesCached+" failed", "err", err)
	}
}
