package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// slowDownSteps is how many poll units each slow_down adds to the interval.
const slowDownSteps = 5

// pollPacer spaces device token requests with a token bucket of size one.
// The bucket starts empty so the first poll waits a full interval.
type pollPacer struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	interval time.Duration
	step     time.Duration
}

func newPollPacer(interval, step time.Duration) *pollPacer {
	return &pollPacer{limiter: drainedLimiter(interval), interval: interval, step: step}
}

func drainedLimiter(interval time.Duration) *rate.Limiter {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()
	return limiter
}

// Wait blocks until the next poll is allowed.
func (p *pollPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()

	return limiter.Wait(ctx)
}

// SlowDown lengthens the interval after a slow_down response. The next poll
// waits the full new interval.
func (p *pollPacer) SlowDown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.interval += p.step
	p.limiter = drainedLimiter(p.interval)
}

// Interval returns the current polling interval.
func (p *pollPacer) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
