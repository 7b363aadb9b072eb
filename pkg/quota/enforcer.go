package quota

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/identity"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

// Enforcer checks and records usage against plan-tier limits.
type Enforcer struct {
	registry     *plan.Registry
	store        usage.Store
	tiers        TierResolver
	degradedTier plan.Tier
	logger       *slog.Logger
	now          func() time.Time
}

// EnforcerOption configures an Enforcer during construction.
type EnforcerOption func(*Enforcer)

// WithEnforcerLogger sets the logger for enforcement events.
func WithEnforcerLogger(logger *slog.Logger) EnforcerOption {
	return func(e *Enforcer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDegradedTier sets the tier used when the tier source is unreachable.
// The default is Free: a billing outage degrades the service level instead of
// blocking all usage.
func WithDegradedTier(tier plan.Tier) EnforcerOption {
	return func(e *Enforcer) {
		if tier.Valid() {
			e.degradedTier = tier
		}
	}
}

// WithClock overrides the wall clock used to compute the current period.
func WithClock(now func() time.Time) EnforcerOption {
	return func(e *Enforcer) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEnforcer creates an Enforcer. Panics if any required dependency is nil
// to fail fast during initialization.
func NewEnforcer(registry *plan.Registry, store usage.Store, tiers TierResolver, opts ...EnforcerOption) *Enforcer {
	if registry == nil {
		panic("quota: plan registry is required")
	}
	if store == nil {
		panic("quota: usage store is required")
	}
	if tiers == nil {
		panic("quota: tier resolver is required")
	}

	e := &Enforcer{
		registry:     registry,
		store:        store,
		tiers:        tiers,
		degradedTier: plan.TierFree,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Check answers whether the customer may perform one more action of the given
// resource in the current period. Read-only: it never mutates the store, and
// two Checks with no Commit in between always report the same value.
//
// Unknown resources panic (closed enumeration, programming error). Backend
// failures never deny: they degrade per the fail-open policy and mark the
// result Degraded.
func (e *Enforcer) Check(ctx context.Context, customer identity.Customer, res plan.Resource) (CheckResult, error) {
	if !res.Valid() {
		panic(fmt.Sprintf("quota: unknown resource %q", res))
	}
	if customer.ID == "" {
		return CheckResult{}, ErrEmptyCustomerID
	}

	period := usage.PeriodOf(e.now())
	tier, degraded := e.resolveTier(ctx, customer.ID)
	limit := e.registry.LimitsFor(tier).LimitFor(res)

	var current int64
	rec, err := e.store.Get(ctx, customer.ID, period)
	switch {
	case err != nil:
		// Fail open: an unreadable counter must not wedge the request.
		// Treating usage as zero can only over-allow within the period.
		degraded = true
		e.logger.WarnContext(ctx, "usage store unreachable on check, treating usage as zero",
			slog.String("customer_id", customer.ID),
			slog.String("resource", string(res)),
			slog.String("error", err.Error()),
		)
	default:
		current = rec.Count(res)
	}

	return CheckResult{
		Allowed:    limit == plan.Unlimited || current < limit,
		Resource:   res,
		Current:    current,
		Limit:      limit,
		Tier:       tier,
		CustomerID: customer.ID,
		Period:     period,
		Degraded:   degraded,
	}, nil
}

// Commit records that one gated action actually happened. Call it only after
// the action succeeded, never speculatively; an abandoned request records
// nothing and needs no compensation.
//
// Commit deliberately does not re-check the limit (soft-limit policy): it
// trusts that Check ran first and accepts overshoot bounded by the number of
// in-flight requests for the key. Overshoot is logged and reconciled by the
// next Check, not rolled back.
func (e *Enforcer) Commit(ctx context.Context, customer identity.Customer, res plan.Resource) (usage.Record, error) {
	if !res.Valid() {
		panic(fmt.Sprintf("quota: unknown resource %q", res))
	}
	if customer.ID == "" {
		return usage.Record{}, ErrEmptyCustomerID
	}

	period := usage.PeriodOf(e.now())

	rec, err := e.store.Increment(ctx, customer.ID, period, res, 1)
	if err != nil {
		// Nothing to degrade to here: the increment did not happen.
		return usage.Record{}, errors.Join(ErrCommitFailed, err)
	}

	tier, _ := e.resolveTier(ctx, customer.ID)
	limit := e.registry.LimitsFor(tier).LimitFor(res)
	if limit != plan.Unlimited && rec.Count(res) > limit {
		e.logger.WarnContext(ctx, "usage exceeded limit under concurrent commits",
			slog.String("customer_id", customer.ID),
			slog.String("resource", string(res)),
			slog.Int64("current", rec.Count(res)),
			slog.Int64("limit", limit),
			slog.String("tier", string(tier)),
		)
	}

	return rec, nil
}

// resolveTier reads the customer's tier, falling back to the degraded tier
// when the billing-backed source is unreachable.
func (e *Enforcer) resolveTier(ctx context.Context, customerID string) (tier plan.Tier, degraded bool) {
	tier, err := e.tiers(ctx, customerID)
	if err != nil {
		e.logger.WarnContext(ctx, "tier source unreachable, degrading",
			slog.String("customer_id", customerID),
			slog.String("degraded_tier", string(e.degradedTier)),
			slog.String("error", err.Error()),
		)
		return e.degradedTier, true
	}
	if !tier.Valid() {
		// A tier outside the closed set is a configuration error upstream,
		// not a reason to block the customer.
		e.logger.WarnContext(ctx, "unknown tier from source, degrading",
			slog.String("customer_id", customerID),
			slog.String("tier", string(tier)),
		)
		return e.degradedTier, true
	}
	return tier, false
}
