package auth

import "context"

// Identity is the already-authenticated caller. Token verification happens
// upstream; the service only consumes the result.
type Identity struct {
	UserID string
	Admin  bool
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
