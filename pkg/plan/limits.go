package plan

import "fmt"

// Limits describes the resource and feature constraints of a single tier.
type Limits struct {
	Tier            Tier         `yaml:"tier" json:"tier"`
	MonthlyAnalyses int64        `yaml:"monthly_analyses" json:"monthly_analyses"` // Unlimited (-1) disables the cap
	MaxCompanies    int64        `yaml:"max_companies" json:"max_companies"`
	AIAnalysis      bool         `yaml:"ai_analysis" json:"ai_analysis"`
	ExportData      bool         `yaml:"export_data" json:"export_data"`
	APIAccess       bool         `yaml:"api_access" json:"api_access"`
	SupportLevel    SupportLevel `yaml:"support_level" json:"support_level"`
}

// LimitFor returns the numeric cap for the given resource.
//
// AI analyses and exports are feature-gated rather than separately metered:
// when the feature flag is off the limit is 0, otherwise they share the
// monthly analyses budget semantics (Unlimited tiers meter nothing).
// Unknown resources panic: the resource enumeration is closed and a miss is
// a programming error, not a runtime-denied check.
func (l Limits) LimitFor(res Resource) int64 {
	switch res {
	case ResourceAnalyses:
		return l.MonthlyAnalyses
	case ResourceAIAnalyses:
		if !l.AIAnalysis {
			return 0
		}
		return l.MonthlyAnalyses
	case ResourceExports:
		if !l.ExportData {
			return 0
		}
		return l.MonthlyAnalyses
	case ResourceCompanies:
		return l.MaxCompanies
	}
	panic(fmt.Sprintf("plan: unknown resource %q", res))
}

// HasFeature reports whether the boolean feature backing the resource is on.
// Metered-only resources (analyses, companies) are always available.
func (l Limits) HasFeature(res Resource) bool {
	switch res {
	case ResourceAIAnalyses:
		return l.AIAnalysis
	case ResourceExports:
		return l.ExportData
	}
	return true
}

// validate checks a single tier's limit set for configuration errors.
func (l Limits) validate() error {
	if !l.Tier.Valid() {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidCatalog, l.Tier)
	}
	if l.MonthlyAnalyses < Unlimited {
		return fmt.Errorf("%w: tier %s has invalid monthly analyses limit %d", ErrInvalidCatalog, l.Tier, l.MonthlyAnalyses)
	}
	if l.MaxCompanies < Unlimited {
		return fmt.Errorf("%w: tier %s has invalid max companies limit %d", ErrInvalidCatalog, l.Tier, l.MaxCompanies)
	}
	switch l.SupportLevel {
	case SupportEmail, SupportPriority, SupportDedicated:
	default:
		return fmt.Errorf("%w: tier %s has unknown support level %q", ErrInvalidCatalog, l.Tier, l.SupportLevel)
	}
	return nil
}
