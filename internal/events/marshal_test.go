package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingPublisher struct{ calls int }

func (p *countingPublisher) Publish(ctx context.Context, _ string, _ any) *redis.IntCmd {
	p.calls++
	return redis.NewIntCmd(ctx)
}

func TestVacanciesCachedSkipsPublishOnMarshalError(t *testing.T) {
	orig := marshal
	marshal = func(any) ([]byte, error) { return nil, errors.New("unsupported value") }
	t.Cleanup(func() { marshal = orig })

	pub := &countingPublisher{}
	n := NewRedisNotifier(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.VacanciesCached(context.Background(), "cook", 2)

	require.Zero(t, pub.calls)
}
