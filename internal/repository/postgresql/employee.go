package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, user_id, employee_code, full_name, designation, department, shift, email, phone_number, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.EmployeeCode,
		&e.FullName,
		&e.Designation,
		&e.Department,
		&e.Shift,
		&e.Email,
		&e.PhoneNumber,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	return r.queryIn(ctx, "id = ANY($1::text[])", ids)
}

func (r *employeeRepository) GetByCodes(ctx context.Context, codes []string) ([]employee.Employee, error) {
	return r.queryIn(ctx, "employee_code = ANY($1::text[])", codes)
}

func (r *employeeRepository) FindByEmails(ctx context.Context, emails []string) ([]employee.Employee, error) {
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return r.queryIn(ctx, "LOWER(email) = ANY($1::text[])", lowered)
}

// queryIn runs a multi-value lookup, capped at employee.MaxLookupBatch values.
func (r *employeeRepository) queryIn(ctx context.Context, where string, values []string) ([]employee.Employee, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > employee.MaxLookupBatch {
		return nil, employee.ErrLookupTooWide
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where+` ORDER BY id`, values)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *employeeRepository) Upsert(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, user_id, employee_code, full_name, designation, department, shift, email, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			employee_code = EXCLUDED.employee_code,
			full_name = EXCLUDED.full_name,
			designation = EXCLUDED.designation,
			department = EXCLUDED.department,
			shift = EXCLUDED.shift,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query,
		e.ID, e.UserID, e.EmployeeCode, e.FullName, e.Designation, e.Department, e.Shift, e.Email, e.PhoneNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}
