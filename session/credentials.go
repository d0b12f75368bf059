package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/livedeck/reactions-backend/auth"
)

// A CredentialSource hands out a currently valid access token, refreshing it
// when needed. It never returns an expired token.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// Credentials caches the device's vended token for the life of the session
// and refetches it from the token endpoint once the expiry passes.
type Credentials struct {
	endpoint string
	userID   string
	client   *http.Client
	clock    func() time.Time

	mu     sync.Mutex
	cached auth.Token
}

// NewCredentials returns a credential source for the device against the
// token endpoint, e.g. "https://host/api/tokens".
func NewCredentials(endpoint, userID string) *Credentials {
	return &Credentials{
		endpoint: endpoint,
		userID:   userID,
		client:   http.DefaultClient,
		clock:    time.Now,
	}
}

// Token returns the cached token, or fetches a fresh one when the cache is
// empty or the cached token's expiry has passed. The stale token is evicted
// and never presented again.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached.Token != "" && !c.cached.Expired(c.clock()) {
		return c.cached.Token, nil
	}
	c.cached = auth.Token{}

	tok, err := c.fetch(ctx)
	if err != nil {
		return "", &auth.IssuanceError{UserID: c.userID, Err: err}
	}
	c.cached = tok
	return tok.Token, nil
}

func (c *Credentials) fetch(ctx context.Context) (auth.Token, error) {
	u := fmt.Sprintf("%s?user=%s", c.endpoint, url.QueryEscape(c.userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return auth.Token{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return auth.Token{}, fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Token{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok auth.Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return auth.Token{}, fmt.Errorf("decode token: %w", err)
	}
	if tok.Token == "" {
		return auth.Token{}, fmt.Errorf("token endpoint returned an empty token")
	}
	return tok, nil
}
