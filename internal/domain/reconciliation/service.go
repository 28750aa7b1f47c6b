package reconciliation

import "context"

type ReconciliationService interface {
	// Decide applies an approve/reject decision atomically. Deciding a request
	// that is no longer pending fails with ErrAlreadyDecided.
	Decide(ctx context.Context, req DecisionRequest, reviewerID string) (Reconciliation, error)
	// Create files a request for the employee linked to requesterID. Any other
	// employee fails with ErrNotEmployeeOwner.
	Create(ctx context.Context, req CreateRequest, requesterID string) (Reconciliation, error)
	GetByID(ctx context.Context, id string) (Reconciliation, error)
}
