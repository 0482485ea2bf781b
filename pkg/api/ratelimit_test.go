package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siliconops/ingestoor/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestIPLimitersPerIPBuckets(t *testing.T) {
	limiters := newIPLimiters(2)

	// Each IP gets its own bucket with a burst of the per-minute limit.
	assert.True(t, limiters.allow("10.0.0.1"))
	assert.True(t, limiters.allow("10.0.0.1"))
	assert.False(t, limiters.allow("10.0.0.1"))

	assert.True(t, limiters.allow("10.0.0.2"))
}

func TestIPLimitersPrunesIdleEntries(t *testing.T) {
	limiters := newIPLimiters(1)

	assert.True(t, limiters.allow("10.0.0.1"))
	assert.False(t, limiters.allow("10.0.0.1"))

	// Age the entry and the prune clock past their thresholds; the next
	// access from anywhere sweeps the stale bucket.
	limiters.entries["10.0.0.1"].lastSeen =
		limiters.entries["10.0.0.1"].lastSeen.Add(-2 * limiterIdleTTL)
	limiters.lastPrune = limiters.lastPrune.Add(-2 * limiterPruneInterval)

	assert.True(t, limiters.allow("10.0.0.2"))
	assert.NotContains(t, limiters.entries, "10.0.0.1")
}

func TestRateLimitMiddleware(t *testing.T) {
	srv, _, _ := newTestServer(t)

	mw := srv.rateLimitMiddleware(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:1234", "", "10.0.0.1"},
		{"remote addr without port", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:1234", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:1234", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			assert.Equal(t, tt.want, extractIP(req))
		})
	}
}
