package reconciliation

import "errors"

var (
	ErrReconciliationNotFound = errors.New("reconciliation request not found")
	ErrAlreadyDecided         = errors.New("reconciliation request has already been decided")
	ErrMissingReviewer        = errors.New("reviewer identity is required")
	ErrNotEmployeeOwner       = errors.New("employee profile does not belong to the caller")
)
