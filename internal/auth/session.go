// Package auth models the authenticated session that every core operation
// receives explicitly. Session issuance lives outside this system; the API
// only resolves an opaque bearer token to a user id through a SessionStore.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// Session identifies the authenticated user for one request. A nil *Session
// means no authenticated user: read paths degrade to empty results, write
// paths fail with ErrUnauthorized.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Valid reports whether the session belongs to a user and has not expired.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// SessionStore resolves bearer tokens. Implemented by the storage backends.
// An unknown token is (nil, nil); errors are reserved for store failures.
type SessionStore interface {
	GetSession(ctx context.Context, token string) (*Session, error)
}

// Resolver turns an Authorization header value into a Session.
type Resolver struct {
	store SessionStore
}

func NewResolver(store SessionStore) *Resolver {
	return &Resolver{store: store}
}

// FromAuthorizationHeader resolves "Bearer <token>". It returns (nil, nil)
// for a missing or malformed header so callers can apply the read/write
// asymmetry themselves.
func (r *Resolver) FromAuthorizationHeader(ctx context.Context, header string) (*Session, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, nil
	}
	sess, err := r.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.Valid(time.Now()) {
		return nil, nil
	}
	return sess, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
