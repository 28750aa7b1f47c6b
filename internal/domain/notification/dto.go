package notification

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateNotificationRequest is one inbox entry to queue for a user.
type CreateNotificationRequest struct {
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}

// ListQuery selects a page of a user's inbox.
type ListQuery struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

// Normalize clamps the page to 1.. and the page size to 1..MaxPageSize.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	return q
}

type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "notification_ids", Message: "notification_ids is required"})
	}
	return errs.Err()
}

// RegisterDeviceRequest registers an FCM token for the authenticated user.
type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

var knownPlatforms = []string{"android", "ios", "web", "unknown"}

func (r RegisterDeviceRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("token", r.Token)
	if r.Platform != "" {
		errs.OneOf("platform", strings.ToLower(r.Platform), knownPlatforms)
	}
	return errs.Err()
}

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse carries the short-lived token the EventSource connects with.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEEvent is one frame on the stream: Event becomes the SSE "event:" field.
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
