// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// reportKeyPrefix is the Valkey key prefix for cached reports.
	reportKeyPrefix = "report:"

	// DefaultReportTTL is how long an analytics report stays cached.
	DefaultReportTTL = 5 * time.Minute
)

// ReportCache stores JSON-encoded reports in Valkey. A nil *ReportCache is
// valid and never hits, so callers need no Valkey-less code path.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a report cache backed by the given Valkey client.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl == 0 {
		ttl = DefaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Get decodes the cached report for key into dst. Returns false on miss
// or on any error.
func (rc *ReportCache) Get(ctx context.Context, key string, dst any) bool {
	if rc == nil {
		return false
	}
	val, err := rc.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("report cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("report cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("report cache hit", "key", key)
	return true
}

// Set stores v under key with the configured TTL.
func (rc *ReportCache) Set(ctx context.Context, key string, v any) {
	if rc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("report cache encode error", "key", key, "error", err)
		return
	}
	if err := rc.client.Set(ctx, reportKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("report cache set error", "key", key, "error", err)
	}
}

// Invalidate removes every cached report. Called after each generation run
// since any report may now be stale.
func (rc *ReportCache) Invalidate(ctx context.Context) {
	if rc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, reportKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("report cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("report cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("report cache cleared", "deleted", deleted)
	}
}
