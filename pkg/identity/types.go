package identity

import "time"

// Source tags how a customer identity was produced. Downstream components
// must branch on it; a fallback identity is never interchangeable with an
// authenticated one.
type Source string

const (
	// SourceAuthenticated means the identity provider returned a valid session.
	SourceAuthenticated Source = "authenticated"
	// SourceFallback means the provider reported no session (anonymous caller).
	SourceFallback Source = "fallback"
	// SourceErrorFallback means the provider call itself failed.
	SourceErrorFallback Source = "error-fallback"
)

// Customer is the resolved identity for a single request. Immutable once
// returned; the core never persists it.
type Customer struct {
	ID          string
	Source      Source
	DisplayName string
	Email       string
	Metadata    map[string]string
}

// Authenticated reports whether the identity came from a real provider session.
func (c Customer) Authenticated() bool {
	return c.Source == SourceAuthenticated
}

// ProviderUser is the profile shape the identity provider exposes for the
// current session.
type ProviderUser struct {
	ID           string
	Email        string
	FullName     string
	CreatedAt    time.Time
	LastSignInAt time.Time
}
