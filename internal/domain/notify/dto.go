package notify

import (
	"github.com/cmlabs-hris/hris-notify/internal/pkg/validator"
)

type RequestKind string

const (
	KindAdvanceSalary RequestKind = "advance_salary"
	KindVisit         RequestKind = "visit"
)

type TaskEvent string

const (
	TaskAssigned TaskEvent = "assigned"
	TaskUpdated  TaskEvent = "updated"
)

// ReconciliationNotifyRequest announces a new reconciliation to administrators.
type ReconciliationNotifyRequest struct {
	ReconciliationID string `json:"reconciliationId"`
}

func (r ReconciliationNotifyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("reconciliationId", r.ReconciliationID)
	return errs.Err()
}

// DecisionNotifyRequest covers advance-salary and visit requests. An empty or
// "pending" status announces a new request to administrators; any other status
// tells the employee about the decision.
type DecisionNotifyRequest struct {
	Type            RequestKind `json:"type"`
	RequestID       string      `json:"requestId"`
	Status          string      `json:"status,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
}

func (r DecisionNotifyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("type", string(r.Type))
	errs.Required("requestId", r.RequestID)
	if r.Type != "" {
		errs.OneOf("type", string(r.Type), []string{string(KindAdvanceSalary), string(KindVisit)})
	}
	if r.Status != "" {
		errs.OneOf("status", r.Status, []string{"pending", "approved", "rejected"})
	}
	return errs.Err()
}

// IsNewRequest reports whether the call announces a request rather than a decision.
func (r DecisionNotifyRequest) IsNewRequest() bool {
	return r.Status == "" || r.Status == "pending"
}

// TaskNotifyRequest targets employees by code or id.
type TaskNotifyRequest struct {
	Type          TaskEvent `json:"type"`
	TaskID        string    `json:"taskId"`
	TargetUserIDs []string  `json:"targetUserIds"`
}

func (r TaskNotifyRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("type", string(r.Type))
	errs.Required("taskId", r.TaskID)
	if r.Type != "" {
		errs.OneOf("type", string(r.Type), []string{string(TaskAssigned), string(TaskUpdated)})
	}
	if len(r.TargetUserIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "targetUserIds", Message: "targetUserIds is required"})
	}
	return errs.Err()
}

type ReconciliationNotifyResponse struct {
	Success    bool   `json:"success"`
	Recipients int    `json:"recipients"`
	Result     Result `json:"result"`
}

type DecisionNotifyResponse struct {
	Success  bool     `json:"success"`
	Notified Audience `json:"notified"`
	Result   Result   `json:"result"`
}

type TaskNotifyResponse struct {
	Success       bool              `json:"success"`
	Notifications map[string]Result `json:"notifications"`
}
