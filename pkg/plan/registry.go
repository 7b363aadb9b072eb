package plan

import (
	"context"
	"errors"
	"fmt"
)

// Registry is the static mapping from tier to limits. It is a total function
// over the closed tier set: construction fails unless every tier has an entry,
// and lookups never fail afterwards.
type Registry struct {
	// Treated as immutable after construction; thread-safety relies on that.
	limits map[Tier]Limits
}

// NewRegistry loads the plan catalog from src and validates it. A catalog
// missing a tier, or carrying out-of-range limits, is a configuration error
// surfaced at startup, never at request time.
func NewRegistry(ctx context.Context, src Source) (*Registry, error) {
	if src == nil {
		panic("plan: Source is required")
	}

	catalog, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}

	limits := make(map[Tier]Limits, len(catalog))
	for tier, l := range catalog {
		l.Tier = tier
		limits[tier] = l
	}

	return &Registry{limits: limits}, nil
}

// LimitsFor returns the limit set for the given tier. The tier enumeration is
// closed and the catalog was validated as total, so an unknown tier panics.
func (r *Registry) LimitsFor(tier Tier) Limits {
	l, ok := r.limits[tier]
	if !ok {
		panic(fmt.Sprintf("plan: unknown tier %q", tier))
	}
	return l
}

// Catalog returns a copy of the full tier-to-limits mapping, e.g. for
// rendering a pricing page.
func (r *Registry) Catalog() map[Tier]Limits {
	out := make(map[Tier]Limits, len(r.limits))
	for tier, l := range r.limits {
		out[tier] = l
	}
	return out
}

func validateCatalog(catalog map[Tier]Limits) error {
	for _, tier := range AllTiers {
		if _, ok := catalog[tier]; !ok {
			return errors.Join(ErrInvalidCatalog, fmt.Errorf("%w: %s", ErrMissingTier, tier))
		}
	}

	for tier, l := range catalog {
		if !tier.Valid() {
			return fmt.Errorf("%w: unknown tier %q", ErrInvalidCatalog, tier)
		}
		l.Tier = tier
		if err := l.validate(); err != nil {
			return err
		}
	}

	return nil
}
