package identity

import "context"

// Provider is the external identity provider consumed by the Resolver.
//
// CurrentUser returns the profile of the current session, (nil, nil) when no
// session exists, or an error when the provider is unreachable or misbehaving.
// Implementations should honor context cancellation; the Resolver additionally
// bounds the call with its own timeout and absorbs panics, so a misbehaving
// provider can never wedge or fail the calling request.
type Provider interface {
	CurrentUser(ctx context.Context) (*ProviderUser, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (*ProviderUser, error)

func (f ProviderFunc) CurrentUser(ctx context.Context) (*ProviderUser, error) {
	return f(ctx)
}
