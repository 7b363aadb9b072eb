package quota

import "errors"

// Domain errors for quota enforcement.
var (
	ErrEmptyCustomerID = errors.New("quota.errors.empty_customer_id")
	ErrCommitFailed    = errors.New("quota.errors.commit_failed")
)
