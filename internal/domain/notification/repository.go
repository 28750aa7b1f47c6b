package notification

import (
	"context"
	"time"
)

// Repository persists inbox entries. Every method is scoped to one recipient
// except Insert and PurgeReadBefore.
type Repository interface {
	Insert(ctx context.Context, notifications ...*Notification) error
	ListForRecipient(ctx context.Context, recipientID string, q ListQuery) ([]*Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	// MarkRead marks ids as read. An empty ids marks every unread entry.
	MarkRead(ctx context.Context, recipientID string, ids []string) error
	Delete(ctx context.Context, recipientID, id string) error
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type DeviceRepository interface {
	Register(ctx context.Context, d Device) error
	GetTokensByUserIDs(ctx context.Context, userIDs []string) ([]Device, error)
	DeleteByTokens(ctx context.Context, tokens []string) error
}
