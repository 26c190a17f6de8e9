package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per (bucket, client IP) pair. Buckets
// for idle clients are pruned on the allow path so the map does not grow
// without bound and no background goroutine is needed.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastPrune time.Time
}

const (
	pruneInterval = 5 * time.Minute
	idleExpiry    = 15 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limitRule names a bucket and its allowance.
type limitRule struct {
	bucket string
	limit  rate.Limit
	burst  int
}

// Per-surface allowances. Browsing is generous; lead capture and admin
// calls are tight because a human never needs more.
var (
	apiRule        = limitRule{bucket: "api", limit: rate.Every(time.Minute / 60), burst: 60}
	contactRule    = limitRule{bucket: "contact", limit: rate.Every(time.Hour / 10), burst: 10}
	newsletterRule = limitRule{bucket: "newsletter", limit: rate.Every(time.Hour / 5), burst: 5}
	adminRule      = limitRule{bucket: "admin", limit: rate.Every(time.Minute / 30), burst: 30}
)

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		clients:   make(map[string]*clientBucket),
		lastPrune: time.Now(),
	}
}

// pruneLocked drops buckets idle past expiry. Caller holds mu.
func (rl *rateLimiter) pruneLocked(now time.Time) {
	for key, cb := range rl.clients {
		if now.Sub(cb.lastSeen) > idleExpiry {
			delete(rl.clients, key)
		}
	}
	rl.lastPrune = now
}

// allow reports whether ip may proceed under rule.
func (rl *rateLimiter) allow(rule limitRule, ip string) bool {
	key := rule.bucket + ":" + ip

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastPrune) > pruneInterval {
		rl.pruneLocked(now)
	}

	cb, ok := rl.clients[key]
	if !ok {
		cb = &clientBucket{limiter: rate.NewLimiter(rule.limit, rule.burst)}
		rl.clients[key] = cb
	}
	cb.lastSeen = now
	return cb.limiter.Allow()
}

// middleware enforces rule on every request through it, answering 429 with
// a Retry-After hint when the bucket is empty.
func (rl *rateLimiter) middleware(rule limitRule, s *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := s.clientIP(r)
			if !rl.allow(rule, ip) {
				retryAfter := int(1 / float64(rule.limit))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
