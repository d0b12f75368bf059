// Package redis backs the ephemeral reaction state with Redis: the per-user
// token cache, the per-presentation leaderboards and the topic pub/sub
// channel all live in one namespace.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTokenTTL = 55 * time.Minute
	defaultBoardTTL = 2 * time.Hour
)

// Config configures a Redis connection. Namespace prefixes every key and
// topic, so presentations only need to be distinct within it. TokenTTL must
// stay at or below the validity window of the tokens being cached; the cache
// returns hits without re-checking their embedded expiry.
type Config struct {
	Addr      string
	Namespace string
	TokenTTL  time.Duration
	BoardTTL  time.Duration
}

// Redis provides the token cache, leaderboard store and topic channel.
type Redis struct {
	cli       *redis.Client
	namespace string
	tokenTTL  time.Duration
	boardTTL  time.Duration
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, cfg Config) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	boardTTL := cfg.BoardTTL
	if boardTTL <= 0 {
		boardTTL = defaultBoardTTL
	}

	return &Redis{
		cli:       cli,
		namespace: cfg.Namespace,
		tokenTTL:  tokenTTL,
		boardTTL:  boardTTL,
	}, nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

func (r *Redis) key(name string) string {
	return fmt.Sprintf("%s:%s", r.namespace, name)
}
