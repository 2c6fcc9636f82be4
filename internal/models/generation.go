// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationRecord is the durable trace of one successful generation run.
// It references the created document and is deleted together with it.
type GenerationRecord struct {
	ID          int64          `json:"id"`
	ContentID   uuid.UUID      `json:"content_id"`
	Topic       string         `json:"topic"`
	Status      PostStatus     `json:"status"`
	ImageURL    *string        `json:"image_url,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Metadata    RecordMetadata `json:"metadata"`
}

// RecordMetadata is stored as JSONB next to the record.
type RecordMetadata struct {
	Tags         []string     `json:"tags"`
	Categories   []string     `json:"categories"`
	FocusKeyword string       `json:"focus_keyword"`
	WordCount    int          `json:"word_count"`
	DurationMS   int64        `json:"duration_ms"`
	ParseKind    string       `json:"parse_kind"`
	SEO          *SEOAnalysis `json:"seo,omitempty"`
}

// SEOAnalysis summarizes the structure of a generated post body.
type SEOAnalysis struct {
	WordCount        int     `json:"word_count"`
	ParagraphCount   int     `json:"paragraph_count"`
	HeadingCount     int     `json:"heading_count"`
	ImageCount       int     `json:"image_count"`
	LinkCount        int     `json:"link_count"`
	KeywordDensity   float64 `json:"keyword_density"`
	ReadabilityScore float64 `json:"readability_score"`
}

// HasImage reports whether a featured image was attached to the post.
func (r *GenerationRecord) HasImage() bool {
	return r.ImageURL != nil && *r.ImageURL != ""
}

// UntrackedContent is a generated-looking document with no matching record.
type UntrackedContent struct {
	ContentID uuid.UUID  `json:"content_id"`
	Title     string     `json:"title"`
	Status    PostStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// DailyCount is the number of generated posts on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TopicCount is how often a topic was generated.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// GenerationTotals are lifetime aggregates over all generation records.
type GenerationTotals struct {
	Records         int     `json:"records"`
	ImagesUsed      int     `json:"images_used"`
	TotalWords      int64   `json:"total_words"`
	AvgDurationSecs float64 `json:"avg_duration_secs"`
}
