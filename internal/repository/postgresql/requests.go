package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/domain/advance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/task"
	"github.com/cmlabs-hris/hris-notify/internal/domain/visit"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type advanceSalaryRepository struct {
	db *database.DB
}

func NewAdvanceSalaryRepository(db *database.DB) advance.AdvanceSalaryRepository {
	return &advanceSalaryRepository{db: db}
}

func (r *advanceSalaryRepository) GetByID(ctx context.Context, id string) (advance.AdvanceSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, employee_name, employee_code, amount, reason, repayment_months,
		       status, rejection_reason, decided_at, created_at
		FROM advance_salary_requests
		WHERE id = $1
	`

	var a advance.AdvanceSalary
	var status string
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.EmployeeID,
		&a.EmployeeName,
		&a.EmployeeCode,
		&a.Amount,
		&a.Reason,
		&a.RepaymentMonths,
		&status,
		&a.RejectionReason,
		&a.DecidedAt,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.AdvanceSalary{}, advance.ErrAdvanceSalaryNotFound
		}
		return advance.AdvanceSalary{}, fmt.Errorf("failed to get advance salary request: %w", err)
	}
	a.Status = advance.Status(status)
	return a, nil
}

type visitRepository struct {
	db *database.DB
}

func NewVisitRepository(db *database.DB) visit.VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) GetByID(ctx context.Context, id string) (visit.Visit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, employee_name, employee_code, client_name, location, purpose,
		       visit_date, status, rejection_reason, created_at
		FROM visit_requests
		WHERE id = $1
	`

	var v visit.Visit
	var status string
	err := q.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.EmployeeID,
		&v.EmployeeName,
		&v.EmployeeCode,
		&v.ClientName,
		&v.Location,
		&v.Purpose,
		&v.VisitDate,
		&status,
		&v.RejectionReason,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return visit.Visit{}, visit.ErrVisitNotFound
		}
		return visit.Visit{}, fmt.Errorf("failed to get visit request: %w", err)
	}
	v.Status = visit.Status(status)
	return v, nil
}

type taskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, title, description, priority, status, due_date, assigned_by_name, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var t task.Task
	err := q.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.DueDate,
		&t.AssignedByName,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}
