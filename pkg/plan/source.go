package plan

import (
	"context"
	"sync"
)

// Source defines how the plan catalog is loaded into the Registry.
type Source interface {
	Load(ctx context.Context) (map[Tier]Limits, error)
}

// inMemSource implements Source backed by an in-memory catalog.
type inMemSource struct {
	mu      sync.RWMutex
	catalog map[Tier]Limits
}

// NewInMemSource returns a Source holding a copy of the given catalog.
func NewInMemSource(catalog map[Tier]Limits) Source {
	cp := make(map[Tier]Limits, len(catalog))
	for tier, l := range catalog {
		cp[tier] = l
	}
	return &inMemSource{catalog: cp}
}

// Load returns a copy of the catalog from memory.
func (s *inMemSource) Load(ctx context.Context) (map[Tier]Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make(map[Tier]Limits, len(s.catalog))
	for tier, l := range s.catalog {
		cp[tier] = l
	}
	return cp, nil
}

// DefaultCatalog returns the built-in tier catalog. Values are static
// configuration, never computed from usage.
func DefaultCatalog() map[Tier]Limits {
	return map[Tier]Limits{
		TierFree: {
			Tier:            TierFree,
			MonthlyAnalyses: 5,
			MaxCompanies:    3,
			AIAnalysis:      false,
			ExportData:      false,
			APIAccess:       false,
			SupportLevel:    SupportEmail,
		},
		TierProfessional: {
			Tier:            TierProfessional,
			MonthlyAnalyses: 100,
			MaxCompanies:    25,
			AIAnalysis:      true,
			ExportData:      true,
			APIAccess:       false,
			SupportLevel:    SupportPriority,
		},
		TierEnterprise: {
			Tier:            TierEnterprise,
			MonthlyAnalyses: Unlimited,
			MaxCompanies:    Unlimited,
			AIAnalysis:      true,
			ExportData:      true,
			APIAccess:       true,
			SupportLevel:    SupportDedicated,
		},
	}
}
