package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNoToken      = errors.New("authorization token missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Session is the authenticated caller as asserted by the identity provider.
type Session struct {
	UserID string
	Email  string
	Role   string
}

// SessionAccessor verifies identity provider access tokens. Handlers receive
// it explicitly instead of reaching for a global client.
type SessionAccessor interface {
	Verify(ctx context.Context, token string) (Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrNoToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// FromRequest verifies the bearer token on r.
func FromRequest(r *http.Request, sessions SessionAccessor) (Session, error) {
	token, err := BearerToken(r)
	if err != nil {
		return Session{}, err
	}
	return sessions.Verify(r.Context(), token)
}
