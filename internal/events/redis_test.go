package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"jobmate/vacancy-bot/internal/events"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestVacanciesCachedPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := events.NewRedisNotifier(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.VacanciesCached(context.Background(), "cook", 3)

	require.Equal(t, events.ChannelVacanciesCached, pub.channel)
	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	require.Equal(t, "cook", got["keyword"])
	require.EqualValues(t, 3, got["inserted"])
}

func TestVacanciesCachedPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	n := events.NewRedisNotifier(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NotPanics(t, func() {
		n.VacanciesCached(context.Background(), "cook", 1)
	})
}
