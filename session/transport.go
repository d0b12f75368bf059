package session

import (
	"context"

	"github.com/livedeck/reactions-backend/redis"
)

// A Subscription is one live topic subscription held by a session.
type Subscription interface {
	Unsubscribe()
}

// A Transport carries events between all participants of a presentation.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, onItem func([]byte), onError func(error)) (Subscription, error)
}

// A Leaderboard aggregates reaction counts. *redis.Redis satisfies it.
type Leaderboard interface {
	Increment(ctx context.Context, board, member string, delta float64) error
}

// RedisTransport adapts the Redis topic channel to the Transport interface.
type RedisTransport struct {
	R *redis.Redis
}

func (t RedisTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	return t.R.Publish(ctx, topic, payload)
}

func (t RedisTransport) Subscribe(ctx context.Context, topic string, onItem func([]byte), onError func(error)) (Subscription, error) {
	sub, err := t.R.Subscribe(ctx, topic, onItem, onError)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
