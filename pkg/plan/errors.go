package plan

import "errors"

// Domain errors for plan catalog loading and validation.
var (
	ErrFailedToLoadCatalog = errors.New("plan.errors.failed_to_load_catalog")
	ErrInvalidCatalog      = errors.New("plan.errors.invalid_catalog")
	ErrMissingTier         = errors.New("plan.errors.missing_tier")
)
