// Package store provides database access methods for the blog content and
// the generation pipeline's tracking data. Each store struct wraps a *sql.DB
// and exposes typed query methods.
package store

import "errors"

// ErrNotFound is returned by mutations that target a missing row.
var ErrNotFound = errors.New("not found")
