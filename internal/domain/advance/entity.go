package advance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AdvanceSalary is an employee's request for part of their salary ahead of payday.
type AdvanceSalary struct {
	ID              string
	EmployeeID      string
	EmployeeName    string
	EmployeeCode    string
	Amount          decimal.Decimal
	Reason          string
	RepaymentMonths int
	Status          Status
	RejectionReason *string
	DecidedAt       *time.Time
	CreatedAt       time.Time
}

var ErrAdvanceSalaryNotFound = errors.New("advance salary request not found")

type AdvanceSalaryRepository interface {
	GetByID(ctx context.Context, id string) (AdvanceSalary, error)
}
