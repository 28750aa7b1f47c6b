package reconciliation

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypeAttendance Type = "attendance"
	TypeBreaktime  Type = "breaktime"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Reconciliation is an employee's request to correct one day's clock-in/out
// or break record. It moves from pending to approved or rejected exactly once.
type Reconciliation struct {
	ID               string
	EmployeeID       string
	EmployeeName     string
	EmployeeCode     string
	Designation      string
	AttendanceDate   string
	RequestedInTime  string
	RequestedOutTime string
	InTimeRemarks    string
	OutTimeRemarks   string
	Type             Type
	Status           Status
	ReviewedBy       *string
	ReviewedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r Reconciliation) IsPending() bool {
	return r.Status == StatusPending
}

// StatusFor maps a decision to its terminal status.
func StatusFor(a Action) Status {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}
