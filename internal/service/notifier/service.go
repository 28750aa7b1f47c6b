package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/advance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/domain/task"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
	"github.com/cmlabs-hris/hris-notify/internal/domain/visit"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// Parallelism bounds concurrent per-recipient fan-outs for task events.
	Parallelism  int
	Location     *time.Location
	CurrencyCode string
}

type service struct {
	recons     reconciliation.ReconciliationRepository
	advances   advance.AdvanceSalaryRepository
	visits     visit.VisitRepository
	tasks      task.TaskRepository
	recipients notify.RecipientResolver
	renderer   template.Renderer
	channels   []notify.Dispatcher
	cfg        Config
}

func NewNotifier(
	recons reconciliation.ReconciliationRepository,
	advances advance.AdvanceSalaryRepository,
	visits visit.VisitRepository,
	tasks task.TaskRepository,
	recipients notify.RecipientResolver,
	renderer template.Renderer,
	channels []notify.Dispatcher,
	cfg Config,
) notify.Notifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 4
	}
	return &service{
		recons:     recons,
		advances:   advances,
		visits:     visits,
		tasks:      tasks,
		recipients: recipients,
		renderer:   renderer,
		channels:   channels,
		cfg:        cfg,
	}
}

// event is one notification to fan out.
type event struct {
	kind notification.NotificationType
	slug string
	vars map[string]string
	data map[string]string
}

// NotifyNewReconciliation tells every administrator about a new request.
func (s *service) NotifyNewReconciliation(ctx context.Context, reconciliationID string) (notify.Result, error) {
	rec, err := s.recons.GetByID(ctx, reconciliationID)
	if err != nil {
		return notify.Result{}, err
	}

	set := s.admins(ctx)
	return s.deliver(ctx, set, event{
		kind: notification.TypeReconciliationRequested,
		slug: template.SlugReconciliationRequested,
		vars: s.reconciliationVars(rec),
		data: map[string]string{"reconciliation_id": rec.ID, "employee_id": rec.EmployeeID},
	}), nil
}

// NotifyReconciliationDecision tells the requesting employee the outcome.
// Pending reconciliations produce an empty result.
func (s *service) NotifyReconciliationDecision(ctx context.Context, reconciliationID string) (notify.Result, error) {
	rec, err := s.recons.GetByID(ctx, reconciliationID)
	if err != nil {
		return notify.Result{}, err
	}
	if rec.IsPending() {
		return notify.Result{}, nil
	}

	kind, slug := notification.TypeReconciliationApproved, template.SlugReconciliationApproved
	if rec.Status == reconciliation.StatusRejected {
		kind, slug = notification.TypeReconciliationRejected, template.SlugReconciliationRejected
	}

	set, name := s.employee(ctx, rec.EmployeeID)
	vars := s.reconciliationVars(rec)
	if name != "" {
		vars["employee_name"] = name
	}
	return s.deliver(ctx, set, event{
		kind: kind,
		slug: slug,
		vars: vars,
		data: map[string]string{"reconciliation_id": rec.ID, "status": string(rec.Status)},
	}), nil
}

// NotifyRequestDecision announces a new advance-salary or visit request to
// administrators, or a decision on one to the employee.
func (s *service) NotifyRequestDecision(ctx context.Context, req notify.DecisionNotifyRequest) (notify.Audience, notify.Result, error) {
	if err := req.Validate(); err != nil {
		return "", notify.Result{}, err
	}

	var (
		employeeID string
		ev         event
	)
	switch req.Type {
	case notify.KindAdvanceSalary:
		a, err := s.advances.GetByID(ctx, req.RequestID)
		if err != nil {
			return "", notify.Result{}, err
		}
		employeeID = a.EmployeeID
		ev = s.advanceEvent(a, req)
	case notify.KindVisit:
		v, err := s.visits.GetByID(ctx, req.RequestID)
		if err != nil {
			return "", notify.Result{}, err
		}
		employeeID = v.EmployeeID
		ev = s.visitEvent(v, req)
	default:
		return "", notify.Result{}, fmt.Errorf("unsupported request type %q", req.Type)
	}

	if req.IsNewRequest() {
		return notify.AudienceAdmins, s.deliver(ctx, s.admins(ctx), ev), nil
	}

	set, _ := s.employee(ctx, employeeID)
	return notify.AudienceEmployee, s.deliver(ctx, set, ev), nil
}

// NotifyTask notifies each target employee separately. The result map is
// keyed by employee id; identifiers that match nobody are skipped.
func (s *service) NotifyTask(ctx context.Context, req notify.TaskNotifyRequest) (map[string]notify.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	targets, err := s.recipients.ResolveEmployees(ctx, req.TargetUserIDs)
	if err != nil {
		slog.Error("Task recipients lookup failed", "task_id", t.ID, "error", err)
		return map[string]notify.Result{}, nil
	}
	if len(targets) == 0 {
		slog.Warn("Task notification matched no employees", "task_id", t.ID, "identifiers", len(req.TargetUserIDs))
	}

	kind, slug := notification.TypeTaskAssigned, template.SlugTaskAssigned
	if req.Type == notify.TaskUpdated {
		kind, slug = notification.TypeTaskUpdated, template.SlugTaskUpdated
	}

	results := make([]notify.Result, len(targets))
	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)
	for i, r := range targets {
		g.Go(func() error {
			vars := s.taskVars(t)
			vars["employee_name"] = orNA(r.Name)
			results[i] = s.deliver(ctx, notify.SetOf(r), event{
				kind: kind,
				slug: slug,
				vars: vars,
				data: map[string]string{"task_id": t.ID, "event": string(req.Type)},
			})
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]notify.Result, len(targets))
	for i, r := range targets {
		out[r.EmployeeID] = results[i]
	}
	return out, nil
}

func (s *service) admins(ctx context.Context) notify.RecipientSet {
	set, err := s.recipients.ResolveByRole(ctx, user.RoleGroupAdministrative)
	if err != nil {
		slog.Error("Administrator lookup failed", "error", err)
		return notify.RecipientSet{}
	}
	return set
}

func (s *service) employee(ctx context.Context, employeeID string) (notify.RecipientSet, string) {
	r, err := s.recipients.ResolveByEmployeeID(ctx, employeeID)
	if err != nil {
		slog.Error("Employee lookup failed", "employee_id", employeeID, "error", err)
		return notify.RecipientSet{}, ""
	}
	return notify.SetOf(r), r.Name
}

// deliver renders the event once per channel and dispatches to every channel
// that has targets in set. Channels run concurrently and never fail the call.
func (s *service) deliver(ctx context.Context, set notify.RecipientSet, ev event) notify.Result {
	res := notify.Result{Recipients: set.Count(), Deliveries: []notify.Delivery{}}
	if set.IsEmpty() {
		slog.Info("No recipients for notification", "event", ev.kind)
		return res
	}

	perChannel := make([][]notify.Delivery, len(s.channels))
	var g errgroup.Group
	for i, d := range s.channels {
		targets := d.Targets(set)
		if len(targets) == 0 {
			continue
		}
		g.Go(func() error {
			perChannel[i] = s.dispatch(ctx, d, targets, ev)
			return nil
		})
	}
	_ = g.Wait()

	for _, ds := range perChannel {
		res.Add(ds...)
	}

	slog.Info("Notification dispatched",
		"event", ev.kind,
		"recipients", res.Recipients,
		"attempted", res.Attempted,
		"succeeded", res.Succeeded,
	)
	return res
}

func (s *service) dispatch(ctx context.Context, d notify.Dispatcher, targets []string, ev event) (out []notify.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Channel dispatch panicked", "channel", d.Channel(), "event", ev.kind, "error", r)
			out = nil
		}
	}()

	rendered, err := s.renderer.Render(ctx, d.Channel(), ev.slug, ev.vars)
	if err != nil {
		slog.Warn("Template unavailable, skipping channel", "channel", d.Channel(), "slug", ev.slug, "error", err)
		return nil
	}

	return d.Dispatch(ctx, targets, notify.Message{
		Event:    ev.kind,
		Rendered: rendered,
		Data:     ev.data,
	})
}
