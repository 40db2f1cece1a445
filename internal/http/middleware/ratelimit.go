package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Buckets idle longer than this are dropped on the next sweep.
const bucketIdleEviction = 10 * time.Minute

// reviewLimiter applies a per-client token bucket to the review endpoints.
// Buckets refill continuously at rate tokens/sec up to burst; stale buckets
// are swept lazily on access, so the limiter owns no goroutine.
type reviewLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	rate      float64
	burst     float64
	now       func() time.Time
	lastSweep time.Time
}

type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

func newReviewLimiter(rate float64, burst int) *reviewLimiter {
	if burst < 1 {
		burst = 1
	}
	return &reviewLimiter{
		buckets: make(map[string]*clientBucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

func (l *reviewLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &clientBucket{tokens: l.burst, lastSeen: now}
		l.buckets[client] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *reviewLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < bucketIdleEviction {
		return
	}
	cutoff := now.Add(-bucketIdleEviction)
	for client, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, client)
		}
	}
	l.lastSweep = now
}

// clientKey identifies the caller. chi's RealIP middleware has already
// rewritten RemoteAddr to the effective client IP when proxy headers are
// trustworthy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects clients submitting reviews faster than rate/sec (with
// the given burst) with a 429 and a JSON body consistent with the rest of
// the API.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := newReviewLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many review requests, slow down"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
