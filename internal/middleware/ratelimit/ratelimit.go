// Package ratelimit provides per-client rate limiting middleware using a
// token bucket per remote address.
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMin is the number of requests allowed per minute per client
	RequestsPerMin int
	// BurstSize is the maximum burst size
	BurstSize int
	// CleanupMinutes is how often to clean up stale entries
	CleanupMinutes int
}

// clientLimiter tracks a rate limiter and its last access time
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages per-client rate limiters
type Limiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Limiter with the given configuration.
func New(cfg Config) *Limiter {
	cleanupEvery := time.Duration(cfg.CleanupMinutes) * time.Minute
	if cleanupEvery <= 0 {
		cleanupEvery = 10 * time.Minute
	}

	l := &Limiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:   cfg.BurstSize,
		cleanup: cleanupEvery,
		stopCh:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeStale()
		case <-l.stopCh:
			return
		}
	}
}

// removeStale drops clients that have not been seen for a cleanup interval
func (l *Limiter) removeStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.cleanup)
	for addr, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, addr)
		}
	}
}

func (l *Limiter) limiterFor(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[addr]; ok {
		c.lastSeen = time.Now()
		return c.limiter
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	l.clients[addr] = &clientLimiter{
		limiter:  limiter,
		lastSeen: time.Now(),
	}
	return limiter
}

// clientAddr keys the limiter map on the remote host, ignoring the port so
// one client cannot reset its bucket by reconnecting.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// healthCheckPaths are exempt from rate limiting
var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/readyz":  true,
}

// Middleware returns an HTTP middleware that rate limits requests per client.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if healthCheckPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if !l.limiterFor(clientAddr(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"code":    "RATE_LIMIT_EXCEEDED",
						"message": "Too many requests. Please try again later.",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Middleware creates a Limiter from cfg and returns its middleware. When
// rate limiting is disabled it returns a pass-through. The Limiter's cleanup
// goroutine runs for the lifetime of the process.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return New(cfg).Middleware()
}
