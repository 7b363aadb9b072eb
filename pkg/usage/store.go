package usage

import (
	"context"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// Store is the persistence contract behind usage counters.
//
// Callers always pass the current period, computed from wall-clock time;
// the store itself never maps a request onto a period. Rollover is lazy:
// the first Get or Increment observing a new period string for a customer
// implicitly starts a fresh zeroed record. Old records are retained,
// not mutated, not deleted.
type Store interface {
	// Get returns the existing record for (customerID, period), or a freshly
	// zeroed one if none exists yet. Read-only.
	Get(ctx context.Context, customerID string, period Period) (Record, error)

	// Increment atomically adds delta to the named counter and returns the
	// post-increment record. Atomicity is per (customerID, period, resource)
	// key; concurrent increments on different keys never block each other.
	Increment(ctx context.Context, customerID string, period Period, res plan.Resource, delta int64) (Record, error)
}

// validateKey guards the shared argument invariants of all Store backends.
func validateKey(customerID string, period Period, delta int64) error {
	if customerID == "" {
		return ErrEmptyCustomerID
	}
	if err := validatePeriod(period); err != nil {
		return err
	}
	if delta < 0 {
		return ErrInvalidDelta
	}
	return nil
}
