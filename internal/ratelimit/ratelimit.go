// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit provides a per-key token-bucket limiter used to throttle
// login and OTP verification attempts per email address.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// KeyedLimiter holds one token bucket per key. Idle entries are evicted so
// the map does not grow without bound.
type KeyedLimiter struct { //nolint:govet // fieldalignment: readability over optimization
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	maxIdle time.Duration
}

// NewKeyedLimiter creates a limiter allowing limit events per second with the
// given burst per key.
func NewKeyedLimiter(limit rate.Limit, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*entry),
		limit:   limit,
		burst:   burst,
		maxIdle: 15 * time.Minute,
	}
}

// Allow reports whether an event for key may proceed now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = now

	if len(l.entries) > 1024 {
		l.evictIdle(now)
	}

	return e.limiter.Allow()
}

// evictIdle removes entries not touched within maxIdle. Caller holds the lock.
func (l *KeyedLimiter) evictIdle(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.lastAccess) > l.maxIdle {
			delete(l.entries, key)
		}
	}
}
