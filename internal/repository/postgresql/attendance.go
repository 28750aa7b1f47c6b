package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, employee_name, employee_code, designation, department, shift,
		in_time, out_time, flag, is_reconciled, reconciliation_id, approval_status, created_at, updated_at`

func (r *attendanceRepository) GetByKey(ctx context.Context, key string) (attendance.Record, error) {
	return r.getByKey(ctx, key, "")
}

func (r *attendanceRepository) GetByKeyForUpdate(ctx context.Context, key string) (attendance.Record, error) {
	return r.getByKey(ctx, key, " FOR UPDATE")
}

func (r *attendanceRepository) getByKey(ctx context.Context, key, lock string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1` + lock

	var rec attendance.Record
	var flag string
	err := q.QueryRow(ctx, query, key).Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.Date,
		&rec.EmployeeName,
		&rec.EmployeeCode,
		&rec.Designation,
		&rec.Department,
		&rec.Shift,
		&rec.InTime,
		&rec.OutTime,
		&flag,
		&rec.IsReconciled,
		&rec.ReconciliationID,
		&rec.ApprovalStatus,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	rec.Flag = attendance.Flag(flag)
	return rec, nil
}

func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	if rec.ID == "" {
		rec.ID = attendance.RecordKey(rec.EmployeeID, rec.Date)
	}

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, employee_name, employee_code, designation, department, shift,
			in_time, out_time, flag, is_reconciled, reconciliation_id, approval_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.EmployeeID,
		rec.Date,
		rec.EmployeeName,
		rec.EmployeeCode,
		rec.Designation,
		rec.Department,
		rec.Shift,
		rec.InTime,
		rec.OutTime,
		string(rec.Flag),
		rec.IsReconciled,
		rec.ReconciliationID,
		rec.ApprovalStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordExists
	}
	return nil
}

// Update writes only the fields set in u.
func (r *attendanceRepository) Update(ctx context.Context, key string, u attendance.RecordUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	sets := []string{}
	args := []interface{}{key}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.InTime != nil {
		add("in_time", *u.InTime)
	}
	if u.OutTime != nil {
		add("out_time", *u.OutTime)
	}
	if u.Flag != nil {
		add("flag", string(*u.Flag))
	}
	if u.IsReconciled != nil {
		add("is_reconciled", *u.IsReconciled)
	}
	if u.ReconciliationID != nil {
		add("reconciliation_id", *u.ReconciliationID)
	}
	if u.ApprovalStatus != nil {
		add("approval_status", *u.ApprovalStatus)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE attendance_records SET %s WHERE id = $1`, strings.Join(sets, ", "))
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}
