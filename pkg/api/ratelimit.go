package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/siliconops/ingestoor/pkg/config"
	"golang.org/x/time/rate"
)

// Idle limiter entries are pruned in-band on access rather than by a
// background goroutine; a middleware outliving its server would leak one
// otherwise.
const (
	limiterIdleTTL       = 10 * time.Minute
	limiterPruneInterval = 5 * time.Minute
)

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastPrune time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(requestsPerMinute int) *ipLimiters {
	return &ipLimiters{
		entries:   make(map[string]*limiterEntry),
		rps:       rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     requestsPerMinute,
		lastPrune: time.Now(),
	}
}

// allow reports whether a request from ip may proceed, pruning idle
// entries as a side effect.
func (l *ipLimiters) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > limiterPruneInterval {
		for key, entry := range l.entries {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.entries, key)
			}
		}

		l.lastPrune = now
	}

	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[ip] = entry
	}

	entry.lastSeen = now

	return entry.limiter.Allow()
}

// rateLimitMiddleware returns a per-IP rate limiting middleware.
func (s *server) rateLimitMiddleware(
	cfg config.RateLimitConfig,
) func(http.Handler) http.Handler {
	limiters := newIPLimiters(cfg.RequestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(extractIP(r)) {
				writeJSON(w, http.StatusTooManyRequests,
					errorResponse{"rate limit exceeded"})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractIP returns the client's IP address from the request.
func extractIP(r *http.Request) string {
	// X-Forwarded-For first, common behind reverse proxies.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
