package usage

import "errors"

// Domain errors for usage storage operations.
var (
	ErrInvalidPeriod    = errors.New("usage.errors.invalid_period")
	ErrInvalidDelta     = errors.New("usage.errors.invalid_delta")
	ErrEmptyCustomerID  = errors.New("usage.errors.empty_customer_id")
	ErrStoreUnavailable = errors.New("usage.errors.store_unavailable")
)
