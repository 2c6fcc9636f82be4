// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the lifecycle state of a stored document. The values match
// the publishing states the generator can request plus "future" for
// documents scheduled by an editor.
type PostStatus string

const (
	PostStatusDraft   PostStatus = "draft"
	PostStatusPending PostStatus = "pending"
	PostStatusPublish PostStatus = "publish"
	PostStatusFuture  PostStatus = "future"
)

// Valid reports whether s is one of the known lifecycle states.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPending, PostStatusPublish, PostStatusFuture:
		return true
	}
	return false
}

// Content is a post in the content store.
type Content struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Body            string     `json:"body"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	Status          PostStatus `json:"status"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id,omitempty"`
	AuthorID        uuid.UUID  `json:"author_id"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPublished returns true if the document is live.
func (c *Content) IsPublished() bool {
	return c.Status == PostStatusPublish
}
