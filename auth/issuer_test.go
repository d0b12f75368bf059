package auth

import (
	"errors"
	"testing"
	"time"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	return NewIssuer(IssuerConfig{
		SigningSecret: []byte("test-secret"),
		Namespace:     "conference",
		Validity:      time.Hour,
		Clock:         testClock,
	})
}

func TestIssuer_Issue(t *testing.T) {
	iss := newTestIssuer(t)

	tok, err := iss.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if tok.Token == "" {
		t.Error("empty token string")
	}
	wantExp := testClock().Add(time.Hour).Unix()
	if tok.ExpiresAt != wantExp {
		t.Errorf("ExpiresAt = %d, want %d", tok.ExpiresAt, wantExp)
	}

	claims, err := iss.Verify(tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.Namespace != "conference" {
		t.Errorf("Namespace = %q, want conference", claims.Namespace)
	}
	if claims.TopicRole != RolePublishSubscribe {
		t.Errorf("TopicRole = %q, want %q", claims.TopicRole, RolePublishSubscribe)
	}
	if claims.CacheRole != RoleReadWrite {
		t.Errorf("CacheRole = %q, want %q", claims.CacheRole, RoleReadWrite)
	}
}

func TestIssuer_IssueErrors(t *testing.T) {
	tests := []struct {
		name   string
		secret []byte
		userID string
	}{
		{name: "NoSecret", secret: nil, userID: "user-1"},
		{name: "EmptyUser", secret: []byte("s"), userID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iss := NewIssuer(IssuerConfig{
				SigningSecret: tt.secret,
				Namespace:     "conference",
				Clock:         testClock,
			})
			_, err := iss.Issue(tt.userID)
			var issErr *IssuanceError
			if !errors.As(err, &issErr) {
				t.Fatalf("got %v, want IssuanceError", err)
			}
		})
	}
}

func TestIssuer_VerifyExpired(t *testing.T) {
	iss := newTestIssuer(t)
	tok, err := iss.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}

	late := NewIssuer(IssuerConfig{
		SigningSecret: []byte("test-secret"),
		Namespace:     "conference",
		Clock: func() time.Time {
			return testClock().Add(2 * time.Hour)
		},
	})
	if _, err := late.Verify(tok.Token); err == nil {
		t.Error("expired token verified")
	}
}

func TestIssuer_VerifyForeignNamespace(t *testing.T) {
	other := NewIssuer(IssuerConfig{
		SigningSecret: []byte("test-secret"),
		Namespace:     "other",
		Clock:         testClock,
	})
	tok, err := other.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestIssuer(t).Verify(tok.Token); err == nil {
		t.Error("token for another namespace verified")
	}
}

func TestToken_Expired(t *testing.T) {
	now := testClock()
	tok := Token{ExpiresAt: now.Unix()}
	if !tok.Expired(now) {
		t.Error("token expiring now should count as expired")
	}
	if tok.Expired(now.Add(-time.Second)) {
		t.Error("future token reported expired")
	}
}
