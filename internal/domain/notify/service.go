package notify

import (
	"context"

	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
)

// RecipientResolver computes notification targets.
type RecipientResolver interface {
	ResolveByRole(ctx context.Context, roles []user.Role) (RecipientSet, error)
	ResolveByEmployeeID(ctx context.Context, employeeID string) (Recipient, error)
	// ResolveEmployees looks identifiers up both as employee codes and as raw
	// ids, merging the results by id.
	ResolveEmployees(ctx context.Context, identifiers []string) ([]Recipient, error)
}

// Dispatcher delivers messages over one channel. Dispatch never returns an
// error: every failure is logged and recorded in the returned deliveries.
type Dispatcher interface {
	Channel() template.Channel
	// Targets picks the destinations this channel can use from set.
	Targets(set RecipientSet) []string
	Dispatch(ctx context.Context, targets []string, msg Message) []Delivery
}

// Notifier runs the per-event fan-out. Only loading the source record can fail.
type Notifier interface {
	NotifyNewReconciliation(ctx context.Context, reconciliationID string) (Result, error)
	NotifyReconciliationDecision(ctx context.Context, reconciliationID string) (Result, error)
	NotifyRequestDecision(ctx context.Context, req DecisionNotifyRequest) (Audience, Result, error)
	NotifyTask(ctx context.Context, req TaskNotifyRequest) (map[string]Result, error)
}
