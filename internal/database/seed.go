package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed creates the author account generated posts are attributed to and
// stores initial generation settings. Existing rows are left untouched, so
// operator edits made through the API survive restarts.
func Seed(db *sql.DB, authorEmail string, settings map[string]string) error {
	res, err := db.Exec(`
		INSERT INTO users (email, display_name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, authorEmail, "AutoBlog")
	if err != nil {
		return fmt.Errorf("seed insert author: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("database seeded with default author", "email", authorEmail)
	}

	seeded := 0
	for key, value := range settings {
		res, err := db.Exec(`
			INSERT INTO site_settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, key, value)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	if seeded > 0 {
		slog.Info("seeded generation settings", "count", seeded)
	}

	return nil
}
