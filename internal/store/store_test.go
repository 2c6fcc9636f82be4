// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"autoblog/internal/database"
	"autoblog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "autoblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "autoblog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthorID returns a user ID for content creation, creating a test
// author when the table is empty.
func testAuthorID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (email, display_name) VALUES ('store-test@autoblog.local', 'Store Test')
		ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id
	`).Scan(&id)
	if err != nil {
		t.Fatalf("ensure test author: %v", err)
	}
	return id
}

// createTestContent inserts a draft document and removes it after the test.
func createTestContent(t *testing.T, db *sql.DB, title string) *models.Content {
	t.Helper()
	s := NewContentStore(db)
	c, err := s.Create(context.Background(), &models.Content{
		Title:    title,
		Slug:     "test-" + uuid.NewString()[:8],
		Body:     "<p>" + title + "</p>",
		Status:   models.PostStatusDraft,
		AuthorID: testAuthorID(t, db),
	})
	if err != nil {
		t.Fatalf("create test content: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM content WHERE id = $1", c.ID) })
	return c
}
