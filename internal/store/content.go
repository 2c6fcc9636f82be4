// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/models"
)

// GeneratedMetaKey marks documents created by the generation pipeline.
const GeneratedMetaKey = "_autoblog_generated"

// ContentStore handles all content-related database operations.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, title, slug, body, excerpt, status, featured_image_id,
	author_id, published_at, created_at, updated_at`

func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Body, &c.Excerpt, &c.Status, &c.FeaturedImageID,
		&c.AuthorID, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new content item and returns it with the generated ID.
// Published items without a timestamp get one.
func (s *ContentStore) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	if c.Status == models.PostStatusPublish && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO content (title, slug, body, excerpt, status, featured_image_id,
		                     author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+contentColumns,
		c.Title, c.Slug, c.Body, c.Excerpt, c.Status, c.FeaturedImageID,
		c.AuthorID, c.PublishedAt,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// UniqueSlug returns base, or base with a numeric suffix, such that no
// existing document uses it.
func (s *ContentStore) UniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM content WHERE slug = $1)`, candidate,
		).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// SetFeaturedImage links a media item as the document's featured image.
func (s *ContentStore) SetFeaturedImage(ctx context.Context, id, mediaID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE content SET featured_image_id = $1, updated_at = NOW() WHERE id = $2
	`, mediaID, id)
	if err != nil {
		return fmt.Errorf("set featured image: %w", err)
	}
	return nil
}

// SetMeta upserts a single meta value on a document.
func (s *ContentStore) SetMeta(ctx context.Context, id uuid.UUID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_meta (content_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
	`, id, key, value)
	if err != nil {
		return fmt.Errorf("set content meta %s: %w", key, err)
	}
	return nil
}

// Meta returns all meta values stored on a document.
func (s *ContentStore) Meta(ctx context.Context, id uuid.UUID) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT meta_key, meta_value FROM content_meta WHERE content_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("list content meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan content meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Publish moves a document to the publish state.
func (s *ContentStore) Publish(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content SET status = 'publish', published_at = $1, updated_at = NOW()
		WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("publish content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a content item by ID. Meta, taxonomy links and the
// generation record go with it.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// RecentPublished returns the most recently published documents.
func (s *ContentStore) RecentPublished(ctx context.Context, limit int) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE status = 'publish'
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
