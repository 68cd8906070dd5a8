package dispatch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter enforces per-backend backpressure: a token bucket for request
// rate plus a slot count for concurrent requests in flight. The dispatcher
// never issues unbounded concurrent requests to any single backend.
type Limiter struct {
	mu              sync.RWMutex
	entries         map[string]*limiterEntry
	defaultRate     rate.Limit
	defaultBurst    int
	defaultInFlight int
}

type limiterEntry struct {
	bucket *rate.Limiter
	slots  chan struct{}
}

// NewLimiter creates a limiter with defaults applied to unconfigured backends
func NewLimiter(requestsPerSecond float64, burst, maxInFlight int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if maxInFlight <= 0 {
		maxInFlight = 2
	}
	return &Limiter{
		entries:         make(map[string]*limiterEntry),
		defaultRate:     rate.Limit(requestsPerSecond),
		defaultBurst:    burst,
		defaultInFlight: maxInFlight,
	}
}

// Configure sets custom limits for one backend. Zero values fall back to
// the limiter defaults.
func (l *Limiter) Configure(backend string, requestsPerSecond float64, burst, maxInFlight int) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = float64(l.defaultRate)
	}
	if burst <= 0 {
		burst = l.defaultBurst
	}
	if maxInFlight <= 0 {
		maxInFlight = l.defaultInFlight
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[backend] = &limiterEntry{
		bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		slots:  make(chan struct{}, maxInFlight),
	}
}

// Acquire blocks until the backend has both a rate token and a free slot,
// or the context ends. The returned release must be called when the
// request completes.
func (l *Limiter) Acquire(ctx context.Context, backend string) (release func(), err error) {
	entry := l.entry(backend)

	if err := entry.bucket.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case entry.slots <- struct{}{}:
	}

	return func() { <-entry.slots }, nil
}

func (l *Limiter) entry(backend string) *limiterEntry {
	l.mu.RLock()
	entry, ok := l.entries[backend]
	l.mu.RUnlock()
	if ok {
		return entry
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.entries[backend]; ok {
		return entry
	}
	entry = &limiterEntry{
		bucket: rate.NewLimiter(l.defaultRate, l.defaultBurst),
		slots:  make(chan struct{}, l.defaultInFlight),
	}
	l.entries[backend] = entry
	return entry
}
