// Package ratelimit throttles requests per client identity.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// Limiter counts attempts per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy is N attempts per window.
type Policy struct {
	Limit  int
	Window time.Duration
}
