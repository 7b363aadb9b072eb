// Package plan defines the subscription tiers of the gating core and the
// per-resource limits attached to each tier.
//
// Tiers and resources are closed enumerations. The Registry is a total
// function over them: once constructed it can answer LimitsFor for every
// tier, and an unknown tier or resource is treated as a programming error
// rather than a runtime condition.
//
// Key concepts:
//
//   - Tier: subscription level (Free, Professional, Enterprise)
//   - Resource: a billable, quota-tracked action type
//   - Limits: the per-tier limit set, with Unlimited (-1) as a distinct sentinel
//   - Source: where the plan catalog is loaded from (memory, YAML file)
//
// Basic usage:
//
//	registry, err := plan.NewRegistry(ctx, plan.NewInMemSource(plan.DefaultCatalog()))
//	if err != nil {
//	    // invalid catalog: fail startup
//	}
//
//	limits := registry.LimitsFor(plan.TierProfessional)
//	if limits.LimitFor(plan.ResourceAnalyses) == plan.Unlimited {
//	    // no monthly cap
//	}
package plan
