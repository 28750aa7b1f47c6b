package visit

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Visit is a request to visit a client site during working hours.
type Visit struct {
	ID              string
	EmployeeID      string
	EmployeeName    string
	EmployeeCode    string
	ClientName      string
	Location        string
	Purpose         string
	VisitDate       time.Time
	Status          Status
	RejectionReason *string
	CreatedAt       time.Time
}

var ErrVisitNotFound = errors.New("visit request not found")

type VisitRepository interface {
	GetByID(ctx context.Context, id string) (Visit, error)
}
