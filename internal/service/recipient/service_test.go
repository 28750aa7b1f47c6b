package recipient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users []user.User
	err   error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) FindByAnyRole(_ context.Context, roles []user.Role) ([]user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []user.User
	for _, u := range f.users {
		if u.HasAnyRole(roles...) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Upsert(_ context.Context, u user.User) error {
	f.users = append(f.users, u)
	return nil
}

type fakeEmployeeRepo struct {
	employees    []employee.Employee
	emailBatches [][]string
	emailErr     error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByIDs(_ context.Context, ids []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetByCodes(_ context.Context, codes []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		for _, c := range codes {
			if e.EmployeeCode == c {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) FindByEmails(_ context.Context, emails []string) ([]employee.Employee, error) {
	if len(emails) > employee.MaxLookupBatch {
		return nil, employee.ErrLookupTooWide
	}
	f.emailBatches = append(f.emailBatches, emails)
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	var out []employee.Employee
	for _, e := range f.employees {
		for _, m := range emails {
			if strings.EqualFold(e.Email, m) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Upsert(_ context.Context, e employee.Employee) error {
	f.employees = append(f.employees, e)
	return nil
}

func ptr(s string) *string { return &s }

func TestResolveByRole_BackfillsPhoneWithoutDuplicates(t *testing.T) {
	users := &fakeUserRepo{users: []user.User{
		{ID: "u1", Email: "u1@x.com", Roles: []user.Role{user.RoleHR, user.RoleAdmin}},
	}}
	emps := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e1", Email: "u1@x.com", PhoneNumber: "+1555"},
	}}

	set, err := NewRecipientResolver(users, emps).ResolveByRole(context.Background(), []user.Role{user.RoleHR})
	require.NoError(t, err)

	assert.Equal(t, []string{"+1555"}, set.Phones)
	assert.Equal(t, []string{"u1@x.com"}, set.Emails)
	assert.Equal(t, []string{"u1"}, set.UserIDs)
	assert.Equal(t, 1, set.Count())
}

func TestResolveByRole_OverlapMatchesAndDedupes(t *testing.T) {
	users := &fakeUserRepo{users: []user.User{
		{ID: "u1", Email: "Admin@X.com", PhoneNumber: "+62811", Roles: []user.Role{user.RoleAdmin, "Viewer"}},
		{ID: "u2", Email: "admin@x.com", Roles: []user.Role{user.RoleSuperAdmin}},
		{ID: "u3", Email: "hr@x.com", PhoneNumber: "+62811", Roles: []user.Role{user.RoleHR}},
		{ID: "u4", Email: "staff@x.com", PhoneNumber: "+62999", Roles: []user.Role{user.RoleEmployee}},
		{ID: "u5", Roles: []user.Role{user.RoleHR}},
	}}
	emps := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e1", Email: "hr@x.com", PhoneNumber: "+62822"},
		{ID: "e2", Email: "admin@x.com", PhoneNumber: "+62811"},
		{ID: "e3", Email: "staff@x.com", PhoneNumber: "+62999"},
	}}

	set, err := NewRecipientResolver(users, emps).ResolveByRole(context.Background(), user.RoleGroupAdministrative)
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@x.com", "hr@x.com"}, set.Emails)
	assert.Equal(t, []string{"+62811", "+62822"}, set.Phones)
	assert.Equal(t, []string{"u1", "u2", "u3", "u5"}, set.UserIDs)
	assert.Equal(t, []string{"admin@x.com", "hr@x.com", "u5"}, set.People)
	assert.Equal(t, 3, set.Count())
}

func TestResolveByRole_ChunksEmailLookups(t *testing.T) {
	users := &fakeUserRepo{}
	for i := 0; i < 23; i++ {
		users.users = append(users.users, user.User{
			ID:    fmt.Sprintf("u%d", i),
			Email: fmt.Sprintf("user%d@x.com", i),
			Roles: []user.Role{user.RoleHR},
		})
	}
	emps := &fakeEmployeeRepo{}

	set, err := NewRecipientResolver(users, emps).ResolveByRole(context.Background(), []user.Role{user.RoleHR})
	require.NoError(t, err)

	assert.Len(t, set.Emails, 23)
	require.Len(t, emps.emailBatches, 3)
	assert.Len(t, emps.emailBatches[0], 10)
	assert.Len(t, emps.emailBatches[1], 10)
	assert.Len(t, emps.emailBatches[2], 3)
}

func TestResolveByRole_NoMatchesIsEmpty(t *testing.T) {
	set, err := NewRecipientResolver(&fakeUserRepo{}, &fakeEmployeeRepo{}).ResolveByRole(context.Background(), []user.Role{user.RoleHR})
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())

	set, err = NewRecipientResolver(&fakeUserRepo{}, &fakeEmployeeRepo{}).ResolveByRole(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestResolveByRole_QueryFailure(t *testing.T) {
	users := &fakeUserRepo{err: errors.New("deadline exceeded")}
	_, err := NewRecipientResolver(users, &fakeEmployeeRepo{}).ResolveByRole(context.Background(), []user.Role{user.RoleHR})
	assert.Error(t, err)
}

func TestResolveByRole_BackfillFailureKeepsUserAddresses(t *testing.T) {
	users := &fakeUserRepo{users: []user.User{{ID: "u1", Email: "u1@x.com", PhoneNumber: "+1", Roles: []user.Role{user.RoleHR}}}}
	emps := &fakeEmployeeRepo{emailErr: errors.New("unavailable")}

	set, err := NewRecipientResolver(users, emps).ResolveByRole(context.Background(), []user.Role{user.RoleHR})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1@x.com"}, set.Emails)
	assert.Equal(t, []string{"+1"}, set.Phones)
}

func TestResolveByEmployeeID(t *testing.T) {
	users := &fakeUserRepo{users: []user.User{{ID: "u9", Email: "bob@x.com", PhoneNumber: "+62800"}}}
	emps := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "E1", FullName: "Bob", UserID: ptr("u9"), PhoneNumber: ""},
		{ID: "E2", FullName: "Ann", Email: "ann@x.com", PhoneNumber: "+62811"},
	}}
	r := NewRecipientResolver(users, emps)

	bob, err := r.ResolveByEmployeeID(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", bob.Email)
	assert.Equal(t, "+62800", bob.Phone)
	assert.Equal(t, "u9", bob.UserID)

	ann, err := r.ResolveByEmployeeID(context.Background(), "E2")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", ann.Email)
	assert.Empty(t, ann.UserID)

	_, err = r.ResolveByEmployeeID(context.Background(), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestResolveEmployees_MergesCodeAndIDLookups(t *testing.T) {
	emps := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "id-1", EmployeeCode: "EMP-001", FullName: "Bob"},
		{ID: "id-2", EmployeeCode: "EMP-002", FullName: "Ann"},
		{ID: "id-3", EmployeeCode: "EMP-003", FullName: "Cid"},
	}}

	got, err := NewRecipientResolver(&fakeUserRepo{}, emps).ResolveEmployees(context.Background(),
		[]string{"EMP-001", "id-1", "id-2", "EMP-002", "unknown", "", "EMP-001"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].EmployeeID)
	assert.Equal(t, "id-2", got[1].EmployeeID)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks(nil, 10))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b"}}, chunks([]string{"a", "b"}, 2))
}
