package ratelimit

import (
	"sync"
	"time"
)

// PerClientConfig configures a PerClientLimiter.
type PerClientConfig struct {
	RequestsPerMinute float64       // sustained chat turns allowed per minute per client
	Burst             float64       // burst capacity per client
	CleanupPeriod     time.Duration // how often idle client buckets are dropped
}

// PerClientLimiter throttles chat turns per client key (usually the
// client IP). A separate token bucket is kept per key; buckets that
// refill back to capacity are dropped by a background sweep.
type PerClientLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
	cfg     PerClientConfig
	onDrop  func()
	stopCh  chan struct{}
}

// NewPerClientLimiter creates a per-client limiter and starts its cleanup
// goroutine. Returns nil when RequestsPerMinute <= 0 (limiting disabled);
// a nil limiter allows everything.
func NewPerClientLimiter(cfg PerClientConfig) *PerClientLimiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	l := &PerClientLimiter{
		buckets: make(map[string]*Bucket),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// OnDrop sets a callback invoked whenever a request is rejected.
func (l *PerClientLimiter) OnDrop(fn func()) {
	if l != nil {
		l.onDrop = fn
	}
}

// Allow reports whether the given client may make another chat turn,
// consuming a token when it may. An empty key is never limited.
func (l *PerClientLimiter) Allow(key string) bool {
	if l == nil || key == "" {
		return true
	}

	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.buckets[key]
		if !ok {
			bucket = NewBucket(l.cfg.Burst, l.cfg.RequestsPerMinute/60)
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed && l.onDrop != nil {
		l.onDrop()
	}
	return allowed
}

// ActiveClients returns the number of tracked client buckets.
func (l *PerClientLimiter) ActiveClients() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

func (l *PerClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			for key, bucket := range l.buckets {
				if bucket.IsFull() {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times and
// on a nil limiter.
func (l *PerClientLimiter) Stop() {
	if l == nil {
		return
	}
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
}
