package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payshield/payshield/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, name, role, status, created_at) VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`
	err := s.db.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.Role, user.Status).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, email, name, role, status, created_at FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, role, status, created_at FROM users WHERE email = $1`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Status, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
