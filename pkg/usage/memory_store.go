package usage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// counters is the live mutable state of one (customer, period) record.
// Each resource counter is an independent atomic, so concurrent increments
// on different resources or different records never contend.
type counters struct {
	analyses   atomic.Int64
	aiAnalyses atomic.Int64
	exports    atomic.Int64
	companies  atomic.Int64
	updatedAt  atomic.Int64 // unix nanos of the last increment
}

func (c *counters) counterFor(res plan.Resource) *atomic.Int64 {
	switch res {
	case plan.ResourceAnalyses:
		return &c.analyses
	case plan.ResourceAIAnalyses:
		return &c.aiAnalyses
	case plan.ResourceExports:
		return &c.exports
	case plan.ResourceCompanies:
		return &c.companies
	}
	panic("usage: unknown resource " + string(res))
}

func (c *counters) snapshot(customerID string, period Period) Record {
	rec := Record{
		CustomerID: customerID,
		Period:     period,
		Analyses:   c.analyses.Load(),
		AIAnalyses: c.aiAnalyses.Load(),
		Exports:    c.exports.Load(),
		Companies:  c.companies.Load(),
	}
	if nanos := c.updatedAt.Load(); nanos > 0 {
		rec.UpdatedAt = time.Unix(0, nanos).UTC()
	}
	return rec
}

// MemoryStore implements Store with in-process state. Intended for tests and
// single-instance deployments; counters do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex // guards the map only, never the counters
	records map[memKey]*counters
}

type memKey struct {
	customerID string
	period     Period
}

// NewMemoryStore creates an empty in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memKey]*counters),
	}
}

// Get returns the record for (customerID, period), zeroed if never touched.
func (ms *MemoryStore) Get(ctx context.Context, customerID string, period Period) (Record, error) {
	if err := validateKey(customerID, period, 0); err != nil {
		return Record{}, err
	}

	ms.mu.RLock()
	c, ok := ms.records[memKey{customerID, period}]
	ms.mu.RUnlock()

	if !ok {
		return zeroRecord(customerID, period), nil
	}
	return c.snapshot(customerID, period), nil
}

// Increment atomically adds delta to the named counter. The map lock is held
// only long enough to find or create the record; the add itself is a single
// atomic operation on the per-record counter.
func (ms *MemoryStore) Increment(ctx context.Context, customerID string, period Period, res plan.Resource, delta int64) (Record, error) {
	if err := validateKey(customerID, period, delta); err != nil {
		return Record{}, err
	}

	key := memKey{customerID, period}

	ms.mu.RLock()
	c, ok := ms.records[key]
	ms.mu.RUnlock()

	if !ok {
		ms.mu.Lock()
		// Re-check under the write lock: another goroutine may have created
		// the record between the two lock acquisitions.
		if c, ok = ms.records[key]; !ok {
			c = &counters{}
			ms.records[key] = c
		}
		ms.mu.Unlock()
	}

	c.counterFor(res).Add(delta)
	c.updatedAt.Store(time.Now().UnixNano())

	return c.snapshot(customerID, period), nil
}

var _ Store = (*MemoryStore)(nil)
