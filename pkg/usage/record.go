package usage

import (
	"fmt"
	"time"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// Record is the usage snapshot of one customer in one period. All counters
// are non-negative; mutation happens only through Store.Increment.
type Record struct {
	CustomerID string    `json:"customer_id"`
	Period     Period    `json:"period"`
	Analyses   int64     `json:"analyses_used"`
	AIAnalyses int64     `json:"ai_analyses_used"`
	Exports    int64     `json:"exports_generated"`
	Companies  int64     `json:"companies_active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Count returns the counter for the given resource. Unknown resources panic:
// the enumeration is closed.
func (r Record) Count(res plan.Resource) int64 {
	switch res {
	case plan.ResourceAnalyses:
		return r.Analyses
	case plan.ResourceAIAnalyses:
		return r.AIAnalyses
	case plan.ResourceExports:
		return r.Exports
	case plan.ResourceCompanies:
		return r.Companies
	}
	panic(fmt.Sprintf("usage: unknown resource %q", res))
}

// zeroRecord returns the lazily-created fresh record for a key.
func zeroRecord(customerID string, period Period) Record {
	return Record{
		CustomerID: customerID,
		Period:     period,
	}
}
