package notification

import (
	"context"
	"time"
)

// Service defines the in-app inbox service
type Service interface {
	// Queue notifications for batched insert and SSE push by background workers.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	GetNotifications(ctx context.Context, userID string, q ListQuery) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)

	RegisterDevice(ctx context.Context, userID string, req RegisterDeviceRequest) error

	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	Stop()
}
