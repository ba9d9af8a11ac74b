// Package ratelimit throttles outgoing calls per chat and globally.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
)

const (
	defaultExpiration = time.Hour
	cleanupInterval   = 10 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter combines a global token bucket with one bucket per key.
// Wait blocks until both allow the call.
type KeyedLimiter struct {
	global *rate.Limiter

	mu         sync.Mutex
	keys       map[int64]*keyLimiter
	perKey     rate.Limit
	burst      int
	expiration time.Duration
}

// NewKeyedLimiter takes rates in events per second. A non-positive rate
// disables the corresponding bucket.
func NewKeyedLimiter(perKeyRate, globalRate float64) *KeyedLimiter {
	l := &KeyedLimiter{
		keys:       make(map[int64]*keyLimiter),
		perKey:     toLimit(perKeyRate),
		burst:      burstFor(perKeyRate),
		expiration: defaultExpiration,
	}

	if globalRate > 0 {
		l.global = rate.NewLimiter(rate.Limit(globalRate), burstFor(globalRate))
	}

	return l
}

func (l *KeyedLimiter) Wait(ctx context.Context, key int64) error {
	start := time.Now()
	defer func() { metrics.TelegramRateLimitWait.Observe(time.Since(start).Seconds()) }()

	if l.global != nil {
		if err := l.global.Wait(ctx); err != nil {
			return err
		}
	}

	if l.perKey == rate.Inf {
		return nil
	}

	return l.limiterFor(key).Wait(ctx)
}

func (l *KeyedLimiter) limiterFor(key int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.keys[key]
	if !exists {
		entry = &keyLimiter{limiter: rate.NewLimiter(l.perKey, l.burst)}
		l.keys[key] = entry
	}

	entry.lastSeen = time.Now()

	return entry.limiter
}

// Run drops idle per-key buckets until ctx is done.
func (l *KeyedLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (l *KeyedLimiter) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0

	for key, entry := range l.keys {
		if now.Sub(entry.lastSeen) > l.expiration {
			delete(l.keys, key)
			removed++
		}
	}

	return removed
}

func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.keys)
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}

	return rate.Limit(perSecond)
}

func burstFor(perSecond float64) int {
	if perSecond < 1 {
		return 1
	}

	return int(perSecond)
}
