// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media is a featured image imported from the photo service. When object
// storage is configured the bytes live in the bucket under S3Key; otherwise
// only SourceURL is kept and the image is hotlinked.
type Media struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Bucket       *string   `json:"bucket,omitempty"`
	S3Key        *string   `json:"s3_key,omitempty"`
	ThumbS3Key   *string   `json:"thumb_s3_key,omitempty"`
	SourceURL    string    `json:"source_url"`
	AltText      *string   `json:"alt_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}

// IsStored reports whether the bytes were uploaded to object storage.
func (m *Media) IsStored() bool {
	return m.S3Key != nil && *m.S3Key != ""
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.SizeBytes)/float64(mb))
	case m.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.SizeBytes)
	}
}
