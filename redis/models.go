package redis

import (
	"github.com/livedeck/reactions-backend/api"
)

// A cachedToken is the serialized form of a vended token stored under the
// user's cache key. The wire shape matches what the token endpoint returns,
// so a cache hit can be handed back verbatim.
type cachedToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"`
}

func (t cachedToken) APIToken() api.Token {
	return api.Token{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	}
}
