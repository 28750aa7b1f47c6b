package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
	GetByCodes(ctx context.Context, codes []string) ([]Employee, error)
	// FindByEmails matches exact, case-insensitive emails. At most
	// MaxLookupBatch emails per call.
	FindByEmails(ctx context.Context, emails []string) ([]Employee, error)
	Upsert(ctx context.Context, e Employee) error
}
