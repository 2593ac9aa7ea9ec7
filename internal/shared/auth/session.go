package auth

import "context"

type userIDKey struct{}

type guestKey struct{}

// WithUserID returns a context carrying the acting user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the acting user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// WithGuest marks the context as belonging to an anonymous guest.
func WithGuest(ctx context.Context, guest bool) context.Context {
	return context.WithValue(ctx, guestKey{}, guest)
}

// IsGuest reports whether the acting user is a guest.
func IsGuest(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	guest, _ := ctx.Value(guestKey{}).(bool)
	return guest
}
