package auth

import "context"

// Session is what the bearer token proves: a user id and the role at issue time.
// The authoritative actor is always re-read from the store.
type Session struct {
	UserID string
	Role   Role
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == "" {
		return Session{}, false
	}
	return s, true
}
