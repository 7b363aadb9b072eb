package quota

import (
	"context"
	"sync"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// MemoryTierStore holds the per-customer subscription tier maintained
// out-of-band by the billing provider's webhooks. Customers without a
// subscription record resolve to Free.
type MemoryTierStore struct {
	mu    sync.RWMutex
	tiers map[string]plan.Tier
}

// NewMemoryTierStore creates an empty tier store.
func NewMemoryTierStore() *MemoryTierStore {
	return &MemoryTierStore{
		tiers: make(map[string]plan.Tier),
	}
}

// SetTier records the customer's tier. Called by the billing webhook handler
// on subscription created/updated/cancelled events.
func (s *MemoryTierStore) SetTier(customerID string, tier plan.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[customerID] = tier
}

// RemoveTier drops the customer's record, reverting them to Free.
func (s *MemoryTierStore) RemoveTier(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tiers, customerID)
}

// Resolver returns the TierResolver view of the store for the Enforcer.
func (s *MemoryTierStore) Resolver() TierResolver {
	return func(ctx context.Context, customerID string) (plan.Tier, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if tier, ok := s.tiers[customerID]; ok {
			return tier, nil
		}
		return plan.TierFree, nil
	}
}
