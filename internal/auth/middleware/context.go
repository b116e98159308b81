package auth

import "context"

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	Sub    string
	Role   string
	Tenant string
	Year   int
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(ctxKeyIdentity)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
