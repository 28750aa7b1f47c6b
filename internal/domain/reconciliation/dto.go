package reconciliation

import (
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/validator"
)

// DecisionRequest is the body of the decision endpoint.
type DecisionRequest struct {
	ReconciliationID string `json:"reconciliationId"`
	Action           Action `json:"action"`
	Type             Type   `json:"type"`
}

func (r DecisionRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("reconciliationId", r.ReconciliationID)
	errs.Required("action", string(r.Action))
	errs.Required("type", string(r.Type))
	if r.Action != "" {
		errs.OneOf("action", string(r.Action), []string{string(ActionApprove), string(ActionReject)})
	}
	if r.Type != "" {
		errs.OneOf("type", string(r.Type), []string{string(TypeAttendance), string(TypeBreaktime)})
	}
	return errs.Err()
}

// CreateRequest is the employee-facing correction form.
type CreateRequest struct {
	EmployeeID       string `json:"employeeId"`
	AttendanceDate   string `json:"attendanceDate"`
	RequestedInTime  string `json:"requestedInTime"`
	RequestedOutTime string `json:"requestedOutTime"`
	InTimeRemarks    string `json:"inTimeRemarks"`
	OutTimeRemarks   string `json:"outTimeRemarks"`
	Type             Type   `json:"type"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("employeeId", r.EmployeeID)
	errs.Required("attendanceDate", r.AttendanceDate)
	if r.AttendanceDate != "" {
		if _, ok := validator.IsValidDate(r.AttendanceDate[:min(len(r.AttendanceDate), 10)]); !ok {
			errs = append(errs, validator.ValidationError{Field: "attendanceDate", Message: "attendanceDate must start with YYYY-MM-DD"})
		}
	}
	if r.RequestedInTime == "" && r.RequestedOutTime == "" {
		errs = append(errs, validator.ValidationError{Field: "requestedInTime", Message: "requestedInTime or requestedOutTime is required"})
	}
	if r.Type != "" {
		errs.OneOf("type", string(r.Type), []string{string(TypeAttendance), string(TypeBreaktime)})
	}
	return errs.Err()
}

type ReconciliationResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	EmployeeName     string     `json:"employeeName"`
	EmployeeCode     string     `json:"employeeCode"`
	Designation      string     `json:"designation"`
	AttendanceDate   string     `json:"attendanceDate"`
	RequestedInTime  string     `json:"requestedInTime,omitempty"`
	RequestedOutTime string     `json:"requestedOutTime,omitempty"`
	InTimeRemarks    string     `json:"inTimeRemarks,omitempty"`
	OutTimeRemarks   string     `json:"outTimeRemarks,omitempty"`
	Type             Type       `json:"type"`
	Status           Status     `json:"status"`
	ReviewedBy       *string    `json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func ToResponse(r Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		EmployeeCode:     r.EmployeeCode,
		Designation:      r.Designation,
		AttendanceDate:   r.AttendanceDate,
		RequestedInTime:  r.RequestedInTime,
		RequestedOutTime: r.RequestedOutTime,
		InTimeRemarks:    r.InTimeRemarks,
		OutTimeRemarks:   r.OutTimeRemarks,
		Type:             r.Type,
		Status:           r.Status,
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       r.ReviewedAt,
		CreatedAt:        r.CreatedAt,
	}
}
