package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"passvault-server/pkg/response"
)

// RateLimiter is a fixed-window per-IP limiter applied to the
// authentication endpoints to slow down online brute force. Counters
// live in memory; a multi-instance deployment would need a shared store.
type RateLimiter struct {
	mu          sync.Mutex
	counters    map[string]*window
	window      time.Duration
	maxRequests int
}

type window struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(windowSize time.Duration, maxRequests int) *RateLimiter {
	return &RateLimiter{
		counters:    make(map[string]*window),
		window:      windowSize,
		maxRequests: maxRequests,
	}
}

// Allow records a hit for the given key and reports whether it is still
// within the window's budget.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	w, ok := rl.counters[key]
	if !ok || now.After(w.resetAt) {
		rl.counters[key] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true
	}

	w.count++
	return w.count <= rl.maxRequests
}

// Middleware rejects over-budget clients with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
