// Package identity resolves the canonical customer identity of a caller.
//
// Resolution never hard-fails a request. The resolver queries an identity
// Provider with a bounded timeout; when the provider reports no session it
// issues a Fallback identity, and when the provider call itself fails it
// issues an ErrorFallback identity carrying the error in metadata. Every
// degraded identity gets a unique synthetic ID, so pre-login pages and
// provider outages degrade to an anonymous-but-usable experience instead of
// an error page.
//
// Basic usage:
//
//	resolver := identity.NewResolver(provider, identity.WithLogger(log))
//	customer := resolver.Resolve(ctx) // never fails
//
//	switch customer.Source {
//	case identity.SourceAuthenticated:
//	    // real account
//	default:
//	    // degraded identity: gate to anonymous/Free behaviour
//	}
package identity
