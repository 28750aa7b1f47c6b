package user

import "time"

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "Super Admin"
	RoleHR         Role = "HR"
	RoleManager    Role = "Manager"
	RoleEmployee   Role = "Employee"
)

// RoleGroupAdministrative is the set of roles notified about requests that
// need an administrative decision.
var RoleGroupAdministrative = []Role{RoleAdmin, RoleSuperAdmin, RoleHR}

type User struct {
	ID          string
	Email       string
	PhoneNumber string
	DisplayName string
	Roles       []Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u User) HasAnyRole(roles ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
