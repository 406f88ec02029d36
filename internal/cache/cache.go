// Package cache holds the read-through cache used in front of the
// analytics pipelines. Dashboard widgets poll aggressively, so even a
// short TTL takes most of the scan load off the store.
package cache

import (
	"context"
	"time"
)

// AnalyticsCache stores marshalled analytics responses under string keys.
// Get reports whether the key was present; cache errors are returned so
// callers can log them, but a miss is never an error.
type AnalyticsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Noop satisfies AnalyticsCache without storing anything. It is the
// default when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
