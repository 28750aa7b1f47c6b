package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoRoles      = errors.New("at least one role is required")
)
