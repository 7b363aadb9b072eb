package quota

import (
	"context"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

// TierResolver returns the current subscription tier of a customer. The tier
// is maintained out-of-band by the billing provider (webhook-updated record);
// the enforcer only ever reads it and never contacts the billing provider
// directly.
type TierResolver func(ctx context.Context, customerID string) (plan.Tier, error)

// StaticTierResolver returns a resolver that always reports the given tier.
// Useful for tests and single-tier deployments.
func StaticTierResolver(tier plan.Tier) TierResolver {
	return func(ctx context.Context, customerID string) (plan.Tier, error) {
		return tier, nil
	}
}

// CheckResult is the transient outcome of a limit check. It is consumed by
// the caller (to branch and to render a denial reason) and by the Gate.
type CheckResult struct {
	Allowed    bool          `json:"allowed"`
	Resource   plan.Resource `json:"resource"`
	Current    int64         `json:"current"`
	Limit      int64         `json:"limit"`
	Tier       plan.Tier     `json:"tier"`
	CustomerID string        `json:"customer_id"`
	Period     usage.Period  `json:"period"`
	// Degraded marks a result computed on fallback data because the tier
	// source or the usage store was unreachable (fail-open, never fail-closed).
	Degraded bool `json:"degraded,omitempty"`
}

// UpgradeSignal is the one-time event emitted when usage first reaches a
// finite limit. It carries what an upsell prompt needs and nothing else; any
// email or billing follow-up belongs to external collaborators.
type UpgradeSignal struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Resource   plan.Resource `json:"resource"`
	Current    int64         `json:"current"`
	Limit      int64         `json:"limit"`
	Tier       plan.Tier     `json:"tier"`
	Period     usage.Period  `json:"period"`
}
