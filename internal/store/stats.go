package store

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsStore keeps named monotonic counters.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// Increment atomically adds one to the named counter, creating it at 1.
func (s *StatsStore) Increment(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_stats (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = generation_stats.value + 1
	`, name)
	if err != nil {
		return fmt.Errorf("increment %s: %w", name, err)
	}
	return nil
}

// Get returns the counter value, or zero if it was never incremented.
func (s *StatsStore) Get(ctx context.Context, name string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM generation_stats WHERE name = $1`, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", name, err)
	}
	return v, nil
}
