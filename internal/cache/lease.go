// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLeaseTTL outlives the slowest generation run (two long upstream
// calls plus image import) so a crashed holder eventually frees the lease.
const DefaultLeaseTTL = 30 * time.Minute

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a mutual-exclusion lease shared by every process using the same
// Valkey instance.
type Lease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewLease creates a lease on key. A zero ttl uses DefaultLeaseTTL.
func NewLease(client *redis.Client, key string, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &Lease{client: client, key: key, ttl: ttl}
}

// Acquire tries to take the lease without waiting. ok is false when another
// holder has it. The returned release func is safe to call once.
func (l *Lease) Acquire(ctx context.Context) (release func(), ok bool, err error) {
	token := uuid.NewString()
	ok, err = l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			slog.Warn("failed to release lease", "key", l.key, "error", err)
		}
	}
	return release, true, nil
}
