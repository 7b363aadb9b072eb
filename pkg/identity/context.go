package identity

import "context"

type ctxKey struct{}

// WithProviderUser returns a context carrying the session user, typically set
// by transport middleware after verifying the upstream session.
func WithProviderUser(ctx context.Context, user *ProviderUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// ProviderUserFromContext extracts the session user stashed by
// WithProviderUser. The second return is false when no user is present.
func ProviderUserFromContext(ctx context.Context) (*ProviderUser, bool) {
	user, ok := ctx.Value(ctxKey{}).(*ProviderUser)
	return user, ok && user != nil
}

// ContextProvider is a Provider that reads the session user from the request
// context. It never errors: a missing user means no session, which the
// Resolver turns into a fallback identity.
type ContextProvider struct{}

var _ Provider = ContextProvider{}

func (ContextProvider) CurrentUser(ctx context.Context) (*ProviderUser, error) {
	user, ok := ProviderUserFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return user, nil
}
