package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter counts failed attempts per key with a token bucket. Each
// failure spends a token; tokens refill at one per Refill interval. A key
// with no token left is blocked until one refills. Success forgets the key.
type AttemptLimiter struct {
	Burst  int
	Refill time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewAttemptLimiter allows burst failures before blocking. Zero values
// default to 5 attempts refilling one per minute.
func NewAttemptLimiter(burst int, refill time.Duration) *AttemptLimiter {
	if burst <= 0 {
		burst = 5
	}
	if refill <= 0 {
		refill = time.Minute
	}
	return &AttemptLimiter{
		Burst:    burst,
		Refill:   refill,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Blocked reports whether key has used up its attempts.
func (l *AttemptLimiter) Blocked(key string) bool {
	if l == nil {
		return false
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	l.mu.Unlock()

	return ok && lim.Tokens() < 1
}

// Fail records one failed attempt for key.
func (l *AttemptLimiter) Fail(key string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.Refill), l.Burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	lim.Allow()
}

// Succeed clears the failure history for key.
func (l *AttemptLimiter) Succeed(key string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}

// Sweep forgets keys whose bucket has fully refilled and returns how many
// were dropped.
func (l *AttemptLimiter) Sweep() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, lim := range l.limiters {
		if lim.Tokens() >= float64(l.Burst) {
			delete(l.limiters, key)
			n++
		}
	}
	return n
}

func loginKey(userID string) string { return "login:" + userID }
func mfaKey(userID string) string   { return "mfa:" + userID }
