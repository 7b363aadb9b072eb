package plan

// Tier represents a subscription level.
type Tier string

// The closed set of subscription tiers.
const (
	TierFree         Tier = "free"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// AllTiers lists every tier the Registry must cover.
var AllTiers = []Tier{TierFree, TierProfessional, TierEnterprise}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Resource represents a countable billable resource type.
type Resource string

// The closed set of quota-tracked resources.
const (
	ResourceAnalyses   Resource = "analyses"
	ResourceAIAnalyses Resource = "ai_analyses"
	ResourceExports    Resource = "exports"
	ResourceCompanies  Resource = "companies"
)

// AllResources lists every resource counted against plan limits.
var AllResources = []Resource{ResourceAnalyses, ResourceAIAnalyses, ResourceExports, ResourceCompanies}

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	switch r {
	case ResourceAnalyses, ResourceAIAnalyses, ResourceExports, ResourceCompanies:
		return true
	}
	return false
}

// SupportLevel describes the support channel included with a tier.
type SupportLevel string

const (
	SupportEmail     SupportLevel = "email"
	SupportPriority  SupportLevel = "priority"
	SupportDedicated SupportLevel = "dedicated"
)

// Unlimited marks a resource with no limit (-1). It is a distinct sentinel
// and must never be conflated with a zero limit.
const Unlimited int64 = -1
