package user

import "context"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// FindByAnyRole returns users whose roles overlap roles.
	FindByAnyRole(ctx context.Context, roles []Role) ([]User, error)
	Upsert(ctx context.Context, u User) error
}
