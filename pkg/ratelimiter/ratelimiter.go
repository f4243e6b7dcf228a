package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RatePolicy defines the rate limit configuration for a namespace
type RatePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per namespace:key pair. A policy of
// MaxAttempts per Window becomes a bucket of MaxAttempts tokens refilled
// evenly over the window.
//
//	rl := ratelimiter.NewRateLimiter()
//	rl.SetPolicy("signin", 5, 5*time.Minute)
//
//	if !rl.Allow("signin", email) {
//	    return http.StatusTooManyRequests
//	}
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	policies    map[string]RatePolicy
	stopCleanup chan struct{}
	stopped     bool
	now         func() time.Time
}

// NewRateLimiter creates a rate limiter and starts its idle-bucket cleanup goroutine
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucket),
		policies:    make(map[string]RatePolicy),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go rl.cleanup()

	return rl
}

// SetPolicy configures the rate limit policy for a namespace.
// Existing buckets of the namespace are dropped so the new policy applies immediately.
func (rl *RateLimiter) SetPolicy(namespace string, maxAttempts int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.policies[namespace] = RatePolicy{
		MaxAttempts: maxAttempts,
		Window:      window,
	}

	prefix := namespace + ":"
	for key := range rl.buckets {
		if strings.HasPrefix(key, prefix) {
			delete(rl.buckets, key)
		}
	}
}

// Allow reports whether a request for namespace and key may proceed.
// Namespaces without a policy are denied.
func (rl *RateLimiter) Allow(namespace, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.bucketLocked(namespace, key)
	if b == nil {
		return false
	}

	now := rl.now()
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset clears the bucket for namespace and key, e.g. after a successful sign-in
func (rl *RateLimiter) Reset(namespace, key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.buckets, namespace+":"+key)
}

// RetryAfter returns the number of seconds until the next request for
// namespace and key would be allowed, suitable for a Retry-After header.
func (rl *RateLimiter) RetryAfter(namespace, key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[namespace+":"+key]
	if !ok {
		return 0
	}

	now := rl.now()
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)

	if delay <= 0 {
		return 0
	}
	return int(delay.Seconds()) + 1
}

func (rl *RateLimiter) bucketLocked(namespace, key string) *bucket {
	policy, exists := rl.policies[namespace]
	if !exists || policy.MaxAttempts <= 0 || policy.Window <= 0 {
		return nil
	}

	compositeKey := namespace + ":" + key
	b, ok := rl.buckets[compositeKey]
	if !ok {
		every := rate.Every(policy.Window / time.Duration(policy.MaxAttempts))
		b = &bucket{limiter: rate.NewLimiter(every, policy.MaxAttempts)}
		rl.buckets[compositeKey] = b
	}
	return b
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopCleanup:
			return
		}
	}
}

// evictIdle drops buckets untouched for a full window; they would be full again anyway
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for compositeKey, b := range rl.buckets {
		namespace, _, _ := strings.Cut(compositeKey, ":")
		policy, exists := rl.policies[namespace]
		if !exists || now.Sub(b.lastSeen) > policy.Window {
			delete(rl.buckets, compositeKey)
		}
	}
}

// Stop stops the background cleanup goroutine. It is safe to call Stop multiple times.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.stopped {
		close(rl.stopCleanup)
		rl.stopped = true
	}
}
