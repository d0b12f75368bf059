package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/livedeck/reactions-backend/api"
)

// GetToken returns the cached token for the user, if one is present. A miss
// is not an error.
func (r *Redis) GetToken(ctx context.Context, userID string) (api.Token, bool, error) {
	val, err := r.cli.Get(ctx, r.key(userID+"-token")).Result()
	if errors.Is(err, redis.Nil) {
		return api.Token{}, false, nil
	}
	if err != nil {
		return api.Token{}, false, fmt.Errorf("get token: %w", err)
	}

	var tok cachedToken
	if err := json.Unmarshal([]byte(val), &tok); err != nil {
		return api.Token{}, false, fmt.Errorf("unmarshal token: %w", err)
	}
	return tok.APIToken(), true, nil
}

// PutToken stores the vended token under the user's key with the cache TTL.
func (r *Redis) PutToken(ctx context.Context, userID string, tok api.Token) error {
	b, err := json.Marshal(cachedToken{
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := r.cli.Set(ctx, r.key(userID+"-token"), b, r.tokenTTL).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}
