// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autoblog/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, created_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Names returns every category name in alphabetical order.
func (s *CategoryStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list category names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// FindByName retrieves a category by its exact name. Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. A concurrent insert of the
// same name resolves to the existing row.
func (s *CategoryStore) Create(ctx context.Context, name, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+categoryColumns,
		name, slug,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Assign links categories to a document.
func (s *CategoryStore) Assign(ctx context.Context, contentID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, id := range categoryIDs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO content_categories (content_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, contentID, id)
		if err != nil {
			return fmt.Errorf("assign category: %w", err)
		}
	}
	return nil
}

// ForContent returns the names of the categories linked to a document.
func (s *CategoryStore) ForContent(ctx context.Context, contentID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name
		FROM categories c
		JOIN content_categories cc ON cc.category_id = c.id
		WHERE cc.content_id = $1
		ORDER BY c.name
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list content categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
