package session

import "context"

type sidKey struct{}

// WithSID binds a request context to a session row so the token store
// knows which session's bearer token to read or clear.
func WithSID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sidKey{}, sid)
}

func SIDFromContext(ctx context.Context) string {
	if v := ctx.Value(sidKey{}); v != nil {
		if sid, ok := v.(string); ok {
			return sid
		}
	}
	return ""
}
