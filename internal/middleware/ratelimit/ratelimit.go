// Package ratelimit keeps per-client request counters for the auth
// endpoints, slowing down credential guessing.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo

	requestsPerMinute int
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

// NewLimiter creates a limiter allowing requestsPerMinute per client IP.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &Limiter{
		clients:           make(map[string]*clientInfo),
		requestsPerMinute: requestsPerMinute,
	}
}

// Allow reports whether a request from the given IP fits the current
// one-minute window.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.windowStart) > time.Minute {
		rl.clients[clientIP] = &clientInfo{windowStart: now, requests: 1}
		// Opportunistic cleanup of stale windows.
		for ip, c := range rl.clients {
			if now.Sub(c.windowStart) > 2*time.Minute {
				delete(rl.clients, ip)
			}
		}
		return true
	}

	client.requests++
	return client.requests <= rl.requestsPerMinute
}

// Middleware answers 429 once a client exceeds its window.
func (rl *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.Allow(ip) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
