package common

import (
	"context"
	"errors"
)

// AuthSession carries the authenticated user's bearer token and device
// identity. It travels through context so callers decide the auth scope
// per call rather than relying on ambient globals.
type AuthSession struct {
	Token    string
	Email    string
	DeviceID string
}

// ErrNoSession is returned when an operation requires authentication but
// no session is present in the context.
var ErrNoSession = errors.New("no active session: login required")

type contextKey int

const sessionKey contextKey = iota

// WithSession stores an AuthSession in the context.
func WithSession(ctx context.Context, s *AuthSession) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext retrieves the AuthSession from context, or nil if absent.
func SessionFromContext(ctx context.Context) *AuthSession {
	s, _ := ctx.Value(sessionKey).(*AuthSession)
	return s
}

// RequireSession retrieves the AuthSession or returns ErrNoSession when
// absent or missing a token.
func RequireSession(ctx context.Context) (*AuthSession, error) {
	s := SessionFromContext(ctx)
	if s == nil || s.Token == "" {
		return nil, ErrNoSession
	}
	return s, nil
}
