package store

import (
	"context"
	"database/sql"
	"fmt"

	"autoblog/internal/models"
)

// UserStore looks up the accounts posts are attributed to.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail retrieves an author by email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.Author, error) {
	a := &models.Author{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, created_at
		FROM users WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.DisplayName, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return a, nil
}
