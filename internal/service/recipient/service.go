package recipient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
)

type service struct {
	userRepo     user.UserRepository
	employeeRepo employee.EmployeeRepository
}

func NewRecipientResolver(userRepo user.UserRepository, employeeRepo employee.EmployeeRepository) notify.RecipientResolver {
	return &service{userRepo: userRepo, employeeRepo: employeeRepo}
}

// ResolveByRole collects addresses of users holding any of roles and
// backfills phone numbers from employee profiles sharing their email.
func (s *service) ResolveByRole(ctx context.Context, roles []user.Role) (notify.RecipientSet, error) {
	if len(roles) == 0 {
		return notify.RecipientSet{}, nil
	}

	users, err := s.userRepo.FindByAnyRole(ctx, roles)
	if err != nil {
		return notify.RecipientSet{}, fmt.Errorf("find users by role: %w", err)
	}

	b := notify.NewSetBuilder()
	var emails []string
	seen := make(map[string]struct{})
	for _, u := range users {
		b.AddEmail(u.Email)
		b.AddPhone(u.PhoneNumber)
		b.AddUserID(u.ID)
		b.AddPerson(u.Email, u.ID)

		e := strings.ToLower(strings.TrimSpace(u.Email))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			emails = append(emails, e)
		}
	}

	for _, chunk := range chunks(emails, employee.MaxLookupBatch) {
		emps, err := s.employeeRepo.FindByEmails(ctx, chunk)
		if err != nil {
			slog.Warn("Phone backfill lookup failed", "emails", len(chunk), "error", err)
			continue
		}
		for _, e := range emps {
			b.AddPhone(e.PhoneNumber)
		}
	}

	return b.Build(), nil
}

// ResolveByEmployeeID returns the employee's own addresses, filling blanks
// from the linked user account.
func (s *service) ResolveByEmployeeID(ctx context.Context, employeeID string) (notify.Recipient, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return notify.Recipient{}, err
	}

	r := toRecipient(emp)
	if r.UserID != "" && (r.Email == "" || r.Phone == "") {
		u, err := s.userRepo.GetByID(ctx, r.UserID)
		if err != nil {
			slog.Warn("Linked user lookup failed", "employee_id", employeeID, "user_id", r.UserID, "error", err)
			return r, nil
		}
		if r.Email == "" {
			r.Email = u.Email
		}
		if r.Phone == "" {
			r.Phone = u.PhoneNumber
		}
	}
	return r, nil
}

// ResolveEmployees looks every identifier up as an employee code and as an
// employee id, then merges by id keeping first-seen order.
func (s *service) ResolveEmployees(ctx context.Context, identifiers []string) ([]notify.Recipient, error) {
	ids := uniqueNonEmpty(identifiers)
	if len(ids) == 0 {
		return nil, nil
	}

	var out []notify.Recipient
	seen := make(map[string]struct{})
	add := func(emps []employee.Employee) {
		for _, e := range emps {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, toRecipient(e))
		}
	}

	for _, chunk := range chunks(ids, employee.MaxLookupBatch) {
		byCode, err := s.employeeRepo.GetByCodes(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("get employees by code: %w", err)
		}
		add(byCode)

		byID, err := s.employeeRepo.GetByIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("get employees by id: %w", err)
		}
		add(byID)
	}

	return out, nil
}

func toRecipient(e employee.Employee) notify.Recipient {
	r := notify.Recipient{
		EmployeeID: e.ID,
		Name:       e.FullName,
		Email:      strings.TrimSpace(e.Email),
		Phone:      strings.TrimSpace(e.PhoneNumber),
	}
	if e.UserID != nil {
		r.UserID = *e.UserID
	}
	return r
}

func uniqueNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func chunks(values []string, size int) [][]string {
	var out [][]string
	for size < len(values) {
		values, out = values[size:], append(out, values[:size])
	}
	if len(values) > 0 {
		out = append(out, values)
	}
	return out
}
