package gating

import (
	"context"
	"io"
	"log/slog"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/identity"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/quota"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

// Service is the gating surface exposed to callers such as dashboard actions
// and billing routes. It is an explicit service object constructed with
// injected dependencies; there is no package-level state, so tests stay
// deterministic and nothing leaks across requests.
type Service struct {
	resolver *identity.Resolver
	enforcer *quota.Enforcer
	gate     *quota.Gate
	logger   *slog.Logger
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the gating surface.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the resolver, enforcer and gate into one facade.
// Panics if any dependency is nil to fail fast during initialization.
func NewService(resolver *identity.Resolver, enforcer *quota.Enforcer, gate *quota.Gate, opts ...ServiceOption) *Service {
	if resolver == nil {
		panic("gating: identity resolver is required")
	}
	if enforcer == nil {
		panic("gating: quota enforcer is required")
	}
	if gate == nil {
		panic("gating: notification gate is required")
	}

	s := &Service{
		resolver: resolver,
		enforcer: enforcer,
		gate:     gate,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ResolveIdentity returns the customer identity for the current request.
// Never fails; degraded identities come back tagged with their Source.
func (s *Service) ResolveIdentity(ctx context.Context) identity.Customer {
	return s.resolver.Resolve(ctx)
}

// CheckLimit answers whether one more action of the given resource may
// proceed. Read-only.
func (s *Service) CheckLimit(ctx context.Context, customer identity.Customer, res plan.Resource) (quota.CheckResult, error) {
	return s.enforcer.Check(ctx, customer, res)
}

// CommitUsage records a successfully performed action and runs the
// notification gate over the new counter value. The returned signal is
// non-nil exactly once per (customer, period, resource), when a finite limit
// is first reached.
//
// Call it only after the gated action succeeded: a failed or abandoned
// action must record nothing.
func (s *Service) CommitUsage(ctx context.Context, customer identity.Customer, res plan.Resource) (usage.Record, *quota.UpgradeSignal, error) {
	rec, err := s.enforcer.Commit(ctx, customer, res)
	if err != nil {
		return usage.Record{}, nil, err
	}

	// Re-read the limit context for the gate. The post-commit check is
	// read-only and cheap relative to the gated action itself.
	result, err := s.enforcer.Check(ctx, customer, res)
	if err != nil {
		return rec, nil, nil
	}

	return rec, s.gate.Observe(result, rec), nil
}

// Usage returns the check result for every resource, e.g. for a usage
// dashboard or pricing page.
func (s *Service) Usage(ctx context.Context, customer identity.Customer) (map[plan.Resource]quota.CheckResult, error) {
	out := make(map[plan.Resource]quota.CheckResult, len(plan.AllResources))
	for _, res := range plan.AllResources {
		result, err := s.enforcer.Check(ctx, customer, res)
		if err != nil {
			return nil, err
		}
		out[res] = result
	}
	return out, nil
}

// Signals exposes upgrade signals for push-style consumers.
func (s *Service) Signals() <-chan quota.UpgradeSignal {
	return s.gate.Signals()
}
