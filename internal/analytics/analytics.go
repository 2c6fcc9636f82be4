// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package analytics aggregates generation records into dashboard stats,
// time-series reports and exports. Reports are cached briefly; the
// generator invalidates the cache after each run.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"autoblog/internal/models"
)

const (
	// DefaultDays is the report window when none is given.
	DefaultDays = 30

	// MaxDays bounds the report window and is the export window.
	MaxDays = 365

	// hourWindow is the fixed window of the by-hour breakdown.
	hourWindow = 30 * 24 * time.Hour

	topTopicsLimit   = 10
	recentPostsLimit = 10

	// CounterPostsGenerated mirrors the counter bumped by the generator.
	CounterPostsGenerated = "posts_generated"
)

// Store is the read side of the tracking store.
type Store interface {
	CountByStatus(ctx context.Context, since time.Time) (map[models.PostStatus]int, error)
	CountByDay(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	CountByHour(ctx context.Context, since time.Time) (map[int]int, error)
	TopTopics(ctx context.Context, since time.Time, limit int) ([]models.TopicCount, error)
	List(ctx context.Context, offset, limit int) ([]models.GenerationRecord, int, error)
	Since(ctx context.Context, since time.Time) ([]models.GenerationRecord, error)
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
	Totals(ctx context.Context) (models.GenerationTotals, error)
}

// Counters reads named stats counters.
type Counters interface {
	Get(ctx context.Context, name string) (int64, error)
}

// Cache holds encoded reports for a short time.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any)
}

// Stats are lifetime totals.
type Stats struct {
	PostsGenerated    int     `json:"posts_generated"`
	PostsPublished    int     `json:"posts_published"`
	PostsDraft        int     `json:"posts_draft"`
	PostsScheduled    int     `json:"posts_scheduled"`
	PostsPending      int     `json:"posts_pending"`
	ImagesUsed        int     `json:"images_used"`
	TotalWords        int64   `json:"total_words"`
	AvgGenerationTime float64 `json:"avg_generation_time"`
	GeneratedCounter  int64   `json:"generated_counter"`
}

// StatusCount is the number of records in one status.
type StatusCount struct {
	Status models.PostStatus `json:"status"`
	Count  int               `json:"count"`
}

// HourCount is the number of records generated in one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// MonthlyComparison compares this calendar month with the previous one.
type MonthlyComparison struct {
	CurrentMonth     int     `json:"current_month"`
	LastMonth        int     `json:"last_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

// Report is the time-series view for a window of days.
type Report struct {
	Days              int                       `json:"days"`
	PostsByDay        []models.DailyCount       `json:"posts_by_day"`
	PostsByStatus     []StatusCount             `json:"posts_by_status"`
	PostsByHour       []HourCount               `json:"posts_by_hour"`
	TopTopics         []models.TopicCount       `json:"top_topics"`
	RecentPosts       []models.GenerationRecord `json:"recent_posts"`
	SuccessRate       float64                   `json:"success_rate"`
	MonthlyComparison MonthlyComparison         `json:"monthly_comparison"`
}

// Service computes stats and reports.
type Service struct {
	store    Store
	counters Counters
	cache    Cache
	now      func() time.Time
}

// NewService creates a Service. counters and cache may be nil.
func NewService(store Store, counters Counters, cache Cache) *Service {
	return &Service{store: store, counters: counters, cache: cache, now: time.Now}
}

// Stats returns lifetime totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if s.cacheGet(ctx, "stats", &st) {
		return st, nil
	}

	byStatus, err := s.store.CountByStatus(ctx, time.Time{})
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}

	st = Stats{
		PostsGenerated:    totals.Records,
		PostsPublished:    byStatus[models.PostStatusPublish],
		PostsDraft:        byStatus[models.PostStatusDraft],
		PostsScheduled:    byStatus[models.PostStatusFuture],
		PostsPending:      byStatus[models.PostStatusPending],
		ImagesUsed:        totals.ImagesUsed,
		TotalWords:        totals.TotalWords,
		AvgGenerationTime: round2(totals.AvgDurationSecs),
	}
	if s.counters != nil {
		n, err := s.counters.Get(ctx, CounterPostsGenerated)
		if err != nil {
			return st, fmt.Errorf("stats: %w", err)
		}
		st.GeneratedCounter = n
	}

	s.cacheSet(ctx, "stats", st)
	return st, nil
}

// Analytics returns the report for the last days days. Out-of-range
// windows fall back to DefaultDays or are capped at MaxDays.
func (s *Service) Analytics(ctx context.Context, days int) (Report, error) {
	days = NormalizeDays(days)
	key := fmt.Sprintf("analytics:%d", days)

	var r Report
	if s.cacheGet(ctx, key, &r) {
		return r, nil
	}

	now := s.now()
	since := now.AddDate(0, 0, -days)
	r.Days = days

	var err error
	if r.PostsByDay, err = s.store.CountByDay(ctx, since); err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}

	byStatus, err := s.store.CountByStatus(ctx, time.Time{})
	if err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}
	r.PostsByStatus, r.SuccessRate = statusBreakdown(byStatus)

	byHour, err := s.store.CountByHour(ctx, now.Add(-hourWindow))
	if err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}
	r.PostsByHour = hourBreakdown(byHour)

	if r.TopTopics, err = s.store.TopTopics(ctx, since, topTopicsLimit); err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}
	if r.RecentPosts, _, err = s.store.List(ctx, 0, recentPostsLimit); err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}
	if r.MonthlyComparison, err = s.monthly(ctx, now); err != nil {
		return r, fmt.Errorf("analytics: %w", err)
	}

	if r.PostsByDay == nil {
		r.PostsByDay = []models.DailyCount{}
	}
	if r.TopTopics == nil {
		r.TopTopics = []models.TopicCount{}
	}
	if r.RecentPosts == nil {
		r.RecentPosts = []models.GenerationRecord{}
	}

	s.cacheSet(ctx, key, r)
	return r, nil
}

// NormalizeDays maps a requested window onto [1, MaxDays].
func NormalizeDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

func (s *Service) monthly(ctx context.Context, now time.Time) (MonthlyComparison, error) {
	var m MonthlyComparison
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	next := current.AddDate(0, 1, 0)
	last := current.AddDate(0, -1, 0)

	var err error
	if m.CurrentMonth, err = s.store.CountBetween(ctx, current, next); err != nil {
		return m, err
	}
	if m.LastMonth, err = s.store.CountBetween(ctx, last, current); err != nil {
		return m, err
	}
	if m.LastMonth > 0 {
		m.GrowthPercentage = round2(float64(m.CurrentMonth-m.LastMonth) / float64(m.LastMonth) * 100)
	}
	return m, nil
}

// statusBreakdown orders status counts by status name and computes the
// share of published records.
func statusBreakdown(counts map[models.PostStatus]int) ([]StatusCount, float64) {
	out := make([]StatusCount, 0, len(counts))
	total := 0
	for st, n := range counts {
		out = append(out, StatusCount{Status: st, Count: n})
		total += n
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })

	if total == 0 {
		return out, 0
	}
	return out, round2(float64(counts[models.PostStatusPublish]) / float64(total) * 100)
}

func hourBreakdown(counts map[int]int) []HourCount {
	out := make([]HourCount, 0, len(counts))
	for h, n := range counts {
		out = append(out, HourCount{Hour: h, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	return s.cache != nil && s.cache.Get(ctx, key, dst)
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache != nil {
		s.cache.Set(ctx, key, v)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
