// Package guard serializes roster generation per month and rate limits
// mutating requests.
package guard

import (
	"sync"
	"time"

	"github.com/wardroster/engine/internal/domain"
)

// GuardConfig holds rate limits.
type GuardConfig struct {
	// RateLimitPerMinute caps mutating requests per key. Zero disables it.
	RateLimitPerMinute int
}

// Guard coordinates in-flight and rate checks.
type Guard struct {
	Config GuardConfig

	mu         sync.Mutex
	rateCounts map[string]*rateBucket
	inFlight   map[string]bool
	now        func() int64
}

type rateBucket struct {
	count       int
	windowStart int64
}

// NewGuard creates a Guard with the given config.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{
		Config:     cfg,
		rateCounts: make(map[string]*rateBucket),
		inFlight:   make(map[string]bool),
		now:        func() int64 { return time.Now().Unix() },
	}
}

// BeginGeneration runs the rate check for month and claims its generation
// slot. The returned release func must be called when the run ends.
func (g *Guard) BeginGeneration(month string) (release func(), err error) {
	if err := g.CheckRateLimit(month); err != nil {
		return nil, err
	}
	if err := g.acquire(month); err != nil {
		return nil, err
	}
	return func() { g.releaseSlot(month) }, nil
}

func (g *Guard) acquire(month string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[month] {
		return domain.ErrGenerationInFlight
	}
	g.inFlight[month] = true
	return nil
}

func (g *Guard) releaseSlot(month string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, month)
}

// InFlight reports whether a generation for month is running.
func (g *Guard) InFlight(month string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[month]
}

// CheckRateLimit enforces a per-key sliding window rate limit.
// The window is 60 seconds. If the count exceeds the configured limit,
// ErrRateLimitExceeded is returned.
func (g *Guard) CheckRateLimit(key string) error {
	if g.Config.RateLimitPerMinute <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	bucket, ok := g.rateCounts[key]
	if !ok {
		g.rateCounts[key] = &rateBucket{count: 1, windowStart: now}
		return nil
	}

	if now-bucket.windowStart > 60 {
		bucket.count = 1
		bucket.windowStart = now
		return nil
	}

	if bucket.count >= g.Config.RateLimitPerMinute {
		return domain.ErrRateLimitExceeded
	}

	bucket.count++
	return nil
}
