package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeReconciliationRequested NotificationType = "reconciliation_requested"
	TypeReconciliationApproved  NotificationType = "reconciliation_approved"
	TypeReconciliationRejected  NotificationType = "reconciliation_rejected"
	TypeAdvanceSalaryRequested  NotificationType = "advance_salary_requested"
	TypeAdvanceSalaryDecided    NotificationType = "advance_salary_decided"
	TypeVisitRequested          NotificationType = "visit_requested"
	TypeVisitDecided            NotificationType = "visit_decided"
	TypeTaskAssigned            NotificationType = "task_assigned"
	TypeTaskUpdated             NotificationType = "task_updated"
)

// Notification is an in-app inbox entry.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Device is a push registration for a user.
type Device struct {
	ID         string
	UserID     string
	Token      string
	Platform   string
	CreatedAt  time.Time
	LastSeenAt time.Time
}
