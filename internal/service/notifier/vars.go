package notifier

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/domain/advance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/domain/task"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/domain/visit"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/timefmt"
)

func orNA(v string) string { return timefmt.OrNA(v) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func titleCase(v string) string {
	if v == "" {
		return timefmt.NotAvailable
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func (s *service) reconciliationVars(r reconciliation.Reconciliation) map[string]string {
	return map[string]string{
		"reconciliation_id":   r.ID,
		"employee_name":       orNA(r.EmployeeName),
		"employee_code":       orNA(r.EmployeeCode),
		"designation":         orNA(r.Designation),
		"attendance_date":     timefmt.HumanDate(r.AttendanceDate),
		"requested_in_time":   orNA(timefmt.Clock12(r.RequestedInTime, s.cfg.Location)),
		"requested_out_time":  orNA(timefmt.Clock12(r.RequestedOutTime, s.cfg.Location)),
		"in_time_remarks":     orNA(r.InTimeRemarks),
		"out_time_remarks":    orNA(r.OutTimeRemarks),
		"reconciliation_type": titleCase(string(r.Type)),
		"status":              titleCase(string(r.Status)),
		"reviewed_at":         timefmt.HumanTime(r.ReviewedAt, s.cfg.Location),
	}
}

// decisionStatus prefers the status supplied by the caller over the stored one.
func decisionStatus(req notify.DecisionNotifyRequest, stored string) string {
	if req.Status != "" {
		return req.Status
	}
	return stored
}

func rejectionReason(req notify.DecisionNotifyRequest, stored *string) string {
	if req.RejectionReason != "" {
		return req.RejectionReason
	}
	return orNA(deref(stored))
}

func (s *service) advanceEvent(a advance.AdvanceSalary, req notify.DecisionNotifyRequest) event {
	ev := event{
		kind: notification.TypeAdvanceSalaryDecided,
		slug: template.SlugAdvanceSalaryDecided,
		vars: map[string]string{
			"request_id":       a.ID,
			"employee_name":    orNA(a.EmployeeName),
			"employee_code":    orNA(a.EmployeeCode),
			"amount":           timefmt.Currency(a.Amount, s.cfg.CurrencyCode),
			"reason":           orNA(a.Reason),
			"repayment_months": strconv.Itoa(a.RepaymentMonths),
			"request_date":     timefmt.HumanTime(&a.CreatedAt, s.cfg.Location),
			"decided_at":       timefmt.HumanTime(a.DecidedAt, s.cfg.Location),
			"status":           titleCase(decisionStatus(req, string(a.Status))),
			"rejection_reason": rejectionReason(req, a.RejectionReason),
		},
		data: map[string]string{"request_id": a.ID, "request_type": string(notify.KindAdvanceSalary)},
	}
	if req.IsNewRequest() {
		ev.kind, ev.slug = notification.TypeAdvanceSalaryRequested, template.SlugAdvanceSalaryRequested
	}
	return ev
}

func (s *service) visitEvent(v visit.Visit, req notify.DecisionNotifyRequest) event {
	ev := event{
		kind: notification.TypeVisitDecided,
		slug: template.SlugVisitDecided,
		vars: map[string]string{
			"request_id":       v.ID,
			"employee_name":    orNA(v.EmployeeName),
			"employee_code":    orNA(v.EmployeeCode),
			"client_name":      orNA(v.ClientName),
			"location":         orNA(v.Location),
			"purpose":          orNA(v.Purpose),
			"visit_date":       timefmt.HumanTime(&v.VisitDate, s.cfg.Location),
			"status":           titleCase(decisionStatus(req, string(v.Status))),
			"rejection_reason": rejectionReason(req, v.RejectionReason),
		},
		data: map[string]string{"request_id": v.ID, "request_type": string(notify.KindVisit)},
	}
	if req.IsNewRequest() {
		ev.kind, ev.slug = notification.TypeVisitRequested, template.SlugVisitRequested
	}
	return ev
}

func (s *service) taskVars(t task.Task) map[string]string {
	return map[string]string{
		"task_id":          t.ID,
		"task_title":       orNA(t.Title),
		"task_description": orNA(t.Description),
		"priority":         titleCase(t.Priority),
		"task_status":      titleCase(t.Status),
		"due_date":         timefmt.HumanTime(t.DueDate, s.cfg.Location),
		"assigned_by":      orNA(t.AssignedByName),
	}
}
