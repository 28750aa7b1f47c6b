package attendance

import "time"

type Flag string

const (
	FlagPresent Flag = "P"
	FlagAbsent  Flag = "A"
	FlagLate    Flag = "L"
	FlagHalfDay Flag = "D"
)

const ApprovalStatusApproved = "Approved"

// Record is the per-employee, per-day attendance row. ID is RecordKey(EmployeeID, Date).
type Record struct {
	ID           string
	EmployeeID   string
	Date         string
	EmployeeName string
	EmployeeCode string
	Designation  string
	Department   string
	Shift        string

	InTime           string
	OutTime          string
	Flag             Flag
	IsReconciled     bool
	ReconciliationID *string
	ApprovalStatus   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordKey builds the composite key "{employeeID}_{date}".
func RecordKey(employeeID, date string) string {
	return employeeID + "_" + date
}

// RecordUpdate is a partial update; nil fields are left untouched.
type RecordUpdate struct {
	InTime           *string
	OutTime          *string
	Flag             *Flag
	IsReconciled     *bool
	ReconciliationID *string
	ApprovalStatus   *string
}

func (u RecordUpdate) IsEmpty() bool {
	return u.InTime == nil && u.OutTime == nil && u.Flag == nil &&
		u.IsReconciled == nil && u.ReconciliationID == nil && u.ApprovalStatus == nil
}

// Apply returns r with the non-nil fields of u applied.
func (r Record) Apply(u RecordUpdate) Record {
	if u.InTime != nil {
		r.InTime = *u.InTime
	}
	if u.OutTime != nil {
		r.OutTime = *u.OutTime
	}
	if u.Flag != nil {
		r.Flag = *u.Flag
	}
	if u.IsReconciled != nil {
		r.IsReconciled = *u.IsReconciled
	}
	if u.ReconciliationID != nil {
		id := *u.ReconciliationID
		r.ReconciliationID = &id
	}
	if u.ApprovalStatus != nil {
		r.ApprovalStatus = *u.ApprovalStatus
	}
	return r
}
