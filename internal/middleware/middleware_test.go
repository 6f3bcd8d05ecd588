package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/services"
)

type countingStats struct {
	counts map[services.Counter]int
}

func (c *countingStats) Increment(counter services.Counter) {
	if c.counts == nil {
		c.counts = map[services.Counter]int{}
	}
	c.counts[counter]++
}

func TestTrackTraffic(t *testing.T) {
	stats := &countingStats{}
	h := TrackTraffic(stats)(okHandler())

	requests := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/history"},
		{http.MethodGet, "/assets/app.js"},
		{http.MethodPost, "/api/videos/info"},
		{http.MethodGet, "/api/downloads/history"},
		{http.MethodGet, "/health"},
		{http.MethodPost, "/somewhere"},
	}
	for _, rq := range requests {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(rq.method, rq.path, nil))
	}

	assert.Equal(t, 2, stats.counts[services.CounterVisits])
	assert.Equal(t, 2, stats.counts[services.CounterAPICalls])
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = xlog.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 36)
}
