package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

func (r UserRepository) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, name, email, role, password_hash, created_at, updated_at
	`, u.Name, u.Email, string(u.Role), u.PasswordHash)
	user, err := scanUser(row)
	if db.IsUniqueViolation(err) {
		return nil, domain.Conflictf("email already used")
	}
	return user, err
}

func (r UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, created_at, updated_at
		FROM users
		WHERE email=$1 AND deleted_at IS NULL
	`, email)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
