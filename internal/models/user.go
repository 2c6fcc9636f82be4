// Package models defines the data structures that map to database tables
// and the in-memory types passed between the generation pipeline stages.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Author is the user account generated posts are attributed to.
type Author struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
