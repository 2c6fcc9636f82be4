// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"autoblog/internal/models"
)

// psql builds PostgreSQL-flavoured queries with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GenerationStore persists one tracking record per successful generation
// run and serves the reporting queries over them.
type GenerationStore struct {
	db *sql.DB
}

// NewGenerationStore creates a new GenerationStore.
func NewGenerationStore(db *sql.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

const generationColumns = `id, content_id, topic, status, image_url,
	generated_at, published_at, metadata`

func scanGeneration(scanner interface{ Scan(...any) error }) (*models.GenerationRecord, error) {
	var (
		r    models.GenerationRecord
		meta []byte
	)
	err := scanner.Scan(
		&r.ID, &r.ContentID, &r.Topic, &r.Status, &r.ImageURL,
		&r.GeneratedAt, &r.PublishedAt, &meta,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.Metadata); err != nil {
			return nil, fmt.Errorf("decode record metadata: %w", err)
		}
	}
	return &r, nil
}

// Insert stores a new record and returns its id. GeneratedAt is set by the
// database when zero.
func (s *GenerationStore) Insert(ctx context.Context, rec *models.GenerationRecord) (int64, error) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return 0, fmt.Errorf("encode record metadata: %w", err)
	}

	var generatedAt any
	if !rec.GeneratedAt.IsZero() {
		generatedAt = rec.GeneratedAt
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO generation_records (content_id, topic, status, image_url,
		                                generated_at, published_at, metadata)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()), $6, $7)
		RETURNING id, generated_at
	`, rec.ContentID, rec.Topic, rec.Status, rec.ImageURL,
		generatedAt, rec.PublishedAt, meta,
	).Scan(&rec.ID, &rec.GeneratedAt)
	if err != nil {
		return 0, fmt.Errorf("insert generation record: %w", err)
	}
	return rec.ID, nil
}

// List returns a page of records, newest first, and the total record count.
func (s *GenerationStore) List(ctx context.Context, offset, limit int) ([]models.GenerationRecord, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_records`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generation records: %w", err)
	}

	q := psql.Select(generationColumns).
		From("generation_records").
		OrderBy("generated_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	records, err := s.query(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list generation records: %w", err)
	}
	return records, total, nil
}

// Since returns every record generated at or after the given time, newest first.
func (s *GenerationStore) Since(ctx context.Context, since time.Time) ([]models.GenerationRecord, error) {
	q := withSince(psql.Select(generationColumns).From("generation_records"), since).
		OrderBy("generated_at DESC")
	records, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list generation records since: %w", err)
	}
	return records, nil
}

func (s *GenerationStore) query(ctx context.Context, q sq.SelectBuilder) ([]models.GenerationRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GenerationRecord
	for rows.Next() {
		r, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// FindByContentID returns the newest record for a document. Returns nil if
// not found.
func (s *GenerationStore) FindByContentID(ctx context.Context, contentID uuid.UUID) (*models.GenerationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generation_records WHERE content_id = $1
		ORDER BY generated_at DESC, id DESC LIMIT 1`, contentID)
	r, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find generation record: %w", err)
	}
	return r, nil
}

// UpdateStatus mirrors a document status change onto its record.
func (s *GenerationStore) UpdateStatus(ctx context.Context, contentID uuid.UUID, status models.PostStatus, publishedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generation_records SET status = $1, published_at = $2
		WHERE content_id = $3
	`, status, publishedAt, contentID)
	if err != nil {
		return fmt.Errorf("update generation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record for a document.
func (s *GenerationStore) Delete(ctx context.Context, contentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM generation_records WHERE content_id = $1`, contentID)
	if err != nil {
		return fmt.Errorf("delete generation record: %w", err)
	}
	return nil
}

// Untracked lists documents the pipeline created but never recorded, which
// happens when the tracking write fails after assembly.
func (s *GenerationStore) Untracked(ctx context.Context, limit int) ([]models.UntrackedContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.status, c.created_at
		FROM content c
		JOIN content_meta m ON m.content_id = c.id AND m.meta_key = $1
		LEFT JOIN generation_records g ON g.content_id = c.id
		WHERE g.id IS NULL
		ORDER BY c.created_at DESC
		LIMIT $2
	`, GeneratedMetaKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list untracked content: %w", err)
	}
	defer rows.Close()

	var items []models.UntrackedContent
	for rows.Next() {
		var u models.UntrackedContent
		if err := rows.Scan(&u.ContentID, &u.Title, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan untracked content: %w", err)
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// CountByStatus groups records by status. A zero since counts everything.
func (s *GenerationStore) CountByStatus(ctx context.Context, since time.Time) (map[models.PostStatus]int, error) {
	q := withSince(psql.Select("status", "COUNT(*)").From("generation_records"), since).
		GroupBy("status")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PostStatus]int)
	for rows.Next() {
		var (
			status models.PostStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountByDay returns per-day counts in ascending date order.
func (s *GenerationStore) CountByDay(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	q := withSince(psql.Select("to_char(generated_at, 'YYYY-MM-DD') AS day", "COUNT(*)").
		From("generation_records"), since).
		GroupBy("day").
		OrderBy("day")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by day: %w", err)
	}
	defer rows.Close()

	var days []models.DailyCount
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CountByHour returns counts keyed by hour of day (0-23).
func (s *GenerationStore) CountByHour(ctx context.Context, since time.Time) (map[int]int, error) {
	q := withSince(psql.Select("EXTRACT(HOUR FROM generated_at)::int AS hour", "COUNT(*)").
		From("generation_records"), since).
		GroupBy("hour")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by hour: %w", err)
	}
	defer rows.Close()

	hours := make(map[int]int)
	for rows.Next() {
		var h, n int
		if err := rows.Scan(&h, &n); err != nil {
			return nil, fmt.Errorf("scan hour count: %w", err)
		}
		hours[h] = n
	}
	return hours, rows.Err()
}

// TopTopics returns the most frequently generated topics.
func (s *GenerationStore) TopTopics(ctx context.Context, since time.Time, limit int) ([]models.TopicCount, error) {
	q := withSince(psql.Select("topic", "COUNT(*) AS n").From("generation_records"), since).
		GroupBy("topic").
		OrderBy("n DESC", "topic").
		Limit(uint64(limit))
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top topics: %w", err)
	}
	defer rows.Close()

	var topics []models.TopicCount
	for rows.Next() {
		var tc models.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		topics = append(topics, tc)
	}
	return topics, rows.Err()
}

// CountBetween counts records generated in [from, to).
func (s *GenerationStore) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("generation_records").
		Where(sq.GtOrEq{"generated_at": from}).
		Where(sq.Lt{"generated_at": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count between: %w", err)
	}
	return n, nil
}

// Totals aggregates image usage, word count and run duration over all records.
func (s *GenerationStore) Totals(ctx context.Context) (models.GenerationTotals, error) {
	var (
		t     models.GenerationTotals
		avgMS float64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE image_url IS NOT NULL AND image_url <> ''),
		       COALESCE(SUM((metadata->>'word_count')::bigint), 0)::bigint,
		       COALESCE(AVG((metadata->>'duration_ms')::bigint), 0)::float8
		FROM generation_records
	`).Scan(&t.Records, &t.ImagesUsed, &t.TotalWords, &avgMS)
	if err != nil {
		return t, fmt.Errorf("generation totals: %w", err)
	}
	t.AvgDurationSecs = avgMS / 1000
	return t, nil
}

func withSince(q sq.SelectBuilder, since time.Time) sq.SelectBuilder {
	if since.IsZero() {
		return q
	}
	return q.Where(sq.GtOrEq{"generated_at": since})
}
