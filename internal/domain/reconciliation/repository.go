package reconciliation

import (
	"context"
	"time"
)

type ReconciliationRepository interface {
	GetByID(ctx context.Context, id string) (Reconciliation, error)
	// GetByIDForUpdate locks the row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Reconciliation, error)
	Create(ctx context.Context, r Reconciliation) (Reconciliation, error)
	UpdateDecision(ctx context.Context, id string, status Status, reviewedBy string, reviewedAt time.Time) error
}
