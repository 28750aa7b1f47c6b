package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, phone_number, display_name, roles, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var roles []string
	if err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.DisplayName, &roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	u.Roles = make([]user.Role, len(roles))
	for i, r := range roles {
		u.Roles[i] = user.Role(r)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindByAnyRole uses array overlap so one query covers every role.
func (r *userRepository) FindByAnyRole(ctx context.Context, roles []user.Role) ([]user.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE roles && $1::text[] ORDER BY id`, user.RoleStrings(roles))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Upsert(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, email, phone_number, display_name, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			display_name = EXCLUDED.display_name,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, u.ID, u.Email, u.PhoneNumber, u.DisplayName, user.RoleStrings(u.Roles)); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
