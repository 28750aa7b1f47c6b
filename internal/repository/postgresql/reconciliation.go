package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type reconciliationRepository struct {
	db *database.DB
}

func NewReconciliationRepository(db *database.DB) reconciliation.ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

const reconciliationColumns = `
	id, employee_id, employee_name, employee_code, designation, attendance_date,
	requested_in_time, requested_out_time, in_time_remarks, out_time_remarks,
	type, status, reviewed_by, reviewed_at, created_at, updated_at`

func scanReconciliation(row pgx.Row) (reconciliation.Reconciliation, error) {
	var rec reconciliation.Reconciliation
	var recType, status string
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.EmployeeName,
		&rec.EmployeeCode,
		&rec.Designation,
		&rec.AttendanceDate,
		&rec.RequestedInTime,
		&rec.RequestedOutTime,
		&rec.InTimeRemarks,
		&rec.OutTimeRemarks,
		&recType,
		&status,
		&rec.ReviewedBy,
		&rec.ReviewedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	rec.Type = reconciliation.Type(recType)
	rec.Status = reconciliation.Status(status)
	return rec, err
}

func (r *reconciliationRepository) get(ctx context.Context, query, id string) (reconciliation.Reconciliation, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanReconciliation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reconciliation.Reconciliation{}, reconciliation.ErrReconciliationNotFound
		}
		return reconciliation.Reconciliation{}, fmt.Errorf("failed to get reconciliation: %w", err)
	}
	return rec, nil
}

func (r *reconciliationRepository) GetByID(ctx context.Context, id string) (reconciliation.Reconciliation, error) {
	return r.get(ctx, `SELECT `+reconciliationColumns+` FROM reconciliations WHERE id = $1`, id)
}

func (r *reconciliationRepository) GetByIDForUpdate(ctx context.Context, id string) (reconciliation.Reconciliation, error) {
	return r.get(ctx, `SELECT `+reconciliationColumns+` FROM reconciliations WHERE id = $1 FOR UPDATE`, id)
}

func (r *reconciliationRepository) Create(ctx context.Context, rec reconciliation.Reconciliation) (reconciliation.Reconciliation, error) {
	q := GetQuerier(ctx, r.db)

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO reconciliations (
			id, employee_id, employee_name, employee_code, designation, attendance_date,
			requested_in_time, requested_out_time, in_time_remarks, out_time_remarks,
			type, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING ` + reconciliationColumns

	created, err := scanReconciliation(q.QueryRow(ctx, query,
		rec.ID,
		rec.EmployeeID,
		rec.EmployeeName,
		rec.EmployeeCode,
		rec.Designation,
		rec.AttendanceDate,
		rec.RequestedInTime,
		rec.RequestedOutTime,
		rec.InTimeRemarks,
		rec.OutTimeRemarks,
		string(rec.Type),
		string(rec.Status),
	))
	if err != nil {
		return reconciliation.Reconciliation{}, fmt.Errorf("failed to create reconciliation: %w", err)
	}
	return created, nil
}

func (r *reconciliationRepository) UpdateDecision(ctx context.Context, id string, status reconciliation.Status, reviewedBy string, reviewedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE reconciliations
		SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.Exec(ctx, query, id, string(status), reviewedBy, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation decision: %w", err)
	}
	if result.RowsAffected() == 0 {
		return reconciliation.ErrReconciliationNotFound
	}
	return nil
}
