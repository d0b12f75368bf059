// Package auth mints and verifies the scoped access tokens browser clients
// present to the cache and topic layer.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultValidity = time.Hour

var errMissingSigningSecret = errors.New("signing secret must be provided")

// An IssuanceError means a token could not be minted. The caller must not
// proceed to open a channel or store without a valid token.
type IssuanceError struct {
	UserID string
	Err    error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("issue token for user %q: %v", e.UserID, e.Err)
}

func (e *IssuanceError) Unwrap() error { return e.Err }

// Claims are the claims embedded in an access token. The scope grants
// publish+subscribe on all topics of the namespace and read/write on its key
// space, matching what the reaction clients need and nothing more.
type Claims struct {
	Namespace string `json:"ns"`
	TopicRole string `json:"topics"`
	CacheRole string `json:"cache"`
	jwt.RegisteredClaims
}

const (
	RolePublishSubscribe = "publish_subscribe"
	RoleReadWrite        = "read_write"
)

// Token is a minted access token together with its expiry.
type Token struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"` // epoch seconds
}

// Expired reports whether the token's expiry has passed.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt <= now.Unix()
}

// IssuerConfig configures an Issuer.
type IssuerConfig struct {
	SigningSecret []byte
	Namespace     string
	Validity      time.Duration
	Clock         func() time.Time
}

// Issuer mints HS256 tokens scoped to one namespace.
type Issuer struct {
	secret    []byte
	namespace string
	validity  time.Duration
	clock     func() time.Time
}

// NewIssuer constructs an Issuer with sane defaults.
func NewIssuer(cfg IssuerConfig) *Issuer {
	validity := cfg.Validity
	if validity <= 0 {
		validity = defaultValidity
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Issuer{
		secret:    cfg.SigningSecret,
		namespace: cfg.Namespace,
		validity:  validity,
		clock:     clock,
	}
}

// Issue mints a token for the given user. The token grants
// publish+subscribe on all topics of the issuer's namespace and read/write
// on the namespace's keys, for the configured validity window.
func (i *Issuer) Issue(userID string) (Token, error) {
	if len(i.secret) == 0 {
		return Token{}, &IssuanceError{UserID: userID, Err: errMissingSigningSecret}
	}
	if userID == "" {
		return Token{}, &IssuanceError{UserID: userID, Err: errors.New("empty user id")}
	}

	now := i.clock().UTC()
	expiresAt := now.Add(i.validity)

	claims := Claims{
		Namespace: i.namespace,
		TopicRole: RolePublishSubscribe,
		CacheRole: RoleReadWrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, &IssuanceError{UserID: userID, Err: err}
	}

	return Token{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Verify parses and validates a token string, returning its claims. Expired
// tokens, foreign signatures and tokens for another namespace all fail.
func (i *Issuer) Verify(tokenString string) (Claims, error) {
	if len(i.secret) == 0 {
		return Claims{}, errMissingSigningSecret
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			return i.secret, nil
		},
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Namespace != i.namespace {
		return Claims{}, fmt.Errorf("token scoped to namespace %q, want %q", claims.Namespace, i.namespace)
	}
	return claims, nil
}
