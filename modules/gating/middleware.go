package gating

import (
	"net/http"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/identity"
)

// Trusted identity headers, set by an authenticating gateway in front of the
// gating API. Requests without them resolve to fallback identities.
const (
	HeaderCustomerID    = "X-Customer-Id"
	HeaderCustomerEmail = "X-Customer-Email"
	HeaderCustomerName  = "X-Customer-Name"
)

// IdentityFromHeaders stashes the gateway-asserted session user into the
// request context for identity.ContextProvider to pick up. It must only be
// mounted behind a gateway that strips these headers from client traffic.
func IdentityFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(HeaderCustomerID); id != "" {
			ctx := identity.WithProviderUser(r.Context(), &identity.ProviderUser{
				ID:       id,
				Email:    r.Header.Get(HeaderCustomerEmail),
				FullName: r.Header.Get(HeaderCustomerName),
			})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
