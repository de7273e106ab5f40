package auth

import "context"

// Principal is the verified identity of the caller. Email is the ownership
// key for every record the caller may touch.
type Principal struct {
	Email   string
	Subject string
}

// contextKey is unexported so only this package can install a principal.
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying the verified principal. Only the
// authentication middleware should call this.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal installed by the
// authentication middleware. ok is false on unguarded paths.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
