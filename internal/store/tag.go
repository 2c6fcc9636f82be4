// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autoblog/internal/slug"
)

// TagStore manages post tags. Tags are created on first use.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Assign attaches the named tags to a document in order, creating any that
// do not exist yet. Blank and repeated names are skipped.
func (s *TagStore) Assign(ctx context.Context, contentID uuid.UUID, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]bool, len(names))
	pos := 0
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tagID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tags (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name, slug.Generate(name)).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO content_tags (content_id, tag_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, contentID, tagID, pos)
		if err != nil {
			return fmt.Errorf("assign tag %q: %w", name, err)
		}
		pos++
	}

	return tx.Commit()
}

// ForContent returns a document's tag names in attachment order.
func (s *TagStore) ForContent(ctx context.Context, contentID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM tags t
		JOIN content_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1
		ORDER BY ct.position
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list content tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
