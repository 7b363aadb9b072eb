package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	fallbackIDPrefix      = "temp-customer-"
	errorFallbackIDPrefix = "error-customer-"

	defaultProviderTimeout = 3 * time.Second
)

// fallbackSeq disambiguates fallback IDs minted within the same millisecond.
// A bare wall-clock suffix can collide under high call rates; the appended
// monotonic counter makes every ID unique within the process.
var fallbackSeq atomic.Uint64

// Resolver resolves a caller's canonical customer identity.
type Resolver struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// ResolverOption configures a Resolver during construction.
type ResolverOption func(*Resolver)

// WithLogger sets the logger for resolution events.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProviderTimeout bounds the identity provider call.
func WithProviderTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewResolver creates a Resolver backed by the given identity provider.
// Panics if provider is nil to fail fast during initialization.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	if provider == nil {
		panic("identity: Provider is required")
	}

	r := &Resolver{
		provider: provider,
		timeout:  defaultProviderTimeout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve produces the customer identity for the current request. It never
// returns an error and never blocks past the provider timeout:
//
//   - provider returns a user: Authenticated identity with the provider's ID
//   - provider returns no user: Fallback identity with a unique temp ID
//   - provider call fails (error, timeout, panic): ErrorFallback identity
//     with the failure recorded in metadata
func (r *Resolver) Resolve(ctx context.Context) Customer {
	user, err := r.currentUser(ctx)
	if err != nil {
		c := r.errorFallback(err)
		r.logger.WarnContext(ctx, "error-fallback-used",
			slog.String("customer_id", c.ID),
			slog.String("error", err.Error()),
		)
		return c
	}

	if user == nil || user.ID == "" {
		c := r.fallback()
		r.logger.InfoContext(ctx, "fallback-used",
			slog.String("customer_id", c.ID),
		)
		return c
	}

	c := r.authenticated(user)
	r.logger.InfoContext(ctx, "authenticated",
		slog.String("customer_id", c.ID),
	)
	return c
}

// currentUser calls the provider with a bounded timeout. The call runs in its
// own goroutine so a provider that ignores context cancellation still cannot
// wedge the request, and provider panics are converted to errors.
func (r *Resolver) currentUser(ctx context.Context) (user *ProviderUser, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		user *ProviderUser
		err  error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("identity provider panicked: %v", rec)}
			}
		}()
		u, e := r.provider.CurrentUser(ctx)
		done <- result{user: u, err: e}
	}()

	select {
	case res := <-done:
		return res.user, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("identity provider timed out: %w", ctx.Err())
	}
}

func (r *Resolver) authenticated(user *ProviderUser) Customer {
	meta := make(map[string]string, 2)
	if !user.CreatedAt.IsZero() {
		meta["created_at"] = user.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !user.LastSignInAt.IsZero() {
		meta["last_sign_in_at"] = user.LastSignInAt.UTC().Format(time.RFC3339)
	}

	return Customer{
		ID:          user.ID,
		Source:      SourceAuthenticated,
		DisplayName: displayName(user),
		Email:       user.Email,
		Metadata:    meta,
	}
}

func (r *Resolver) fallback() Customer {
	return Customer{
		ID:          r.syntheticID(fallbackIDPrefix),
		Source:      SourceFallback,
		DisplayName: "User",
		Metadata:    map[string]string{},
	}
}

func (r *Resolver) errorFallback(cause error) Customer {
	return Customer{
		ID:          r.syntheticID(errorFallbackIDPrefix),
		Source:      SourceErrorFallback,
		DisplayName: "User",
		Metadata: map[string]string{
			"error": cause.Error(),
		},
	}
}

func (r *Resolver) syntheticID(prefix string) string {
	return fmt.Sprintf("%s%d-%d", prefix, r.now().UnixMilli(), fallbackSeq.Add(1))
}

// displayName picks the customer-facing name with the defined fallback order:
// full name, then the local part of the email, then the literal "User".
func displayName(user *ProviderUser) string {
	if name := strings.TrimSpace(user.FullName); name != "" {
		return name
	}
	if user.Email != "" {
		if local, _, found := strings.Cut(user.Email, "@"); found && local != "" {
			return local
		}
	}
	return "User"
}
