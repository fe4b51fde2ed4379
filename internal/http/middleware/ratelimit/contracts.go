package ratelimit

import "time"

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AllowAll is a Limiter that never refuses.
type AllowAll struct{}

// Allow always returns true.
func (AllowAll) Allow(string) bool { return true }
