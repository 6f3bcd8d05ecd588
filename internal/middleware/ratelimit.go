package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
)

const (
	APILimiterName      = "api"
	DownloadLimiterName = "download"

	apiLimitMessage      = "Too many requests, please try again later"
	downloadLimitMessage = "Download limit reached, please try again later"
)

// RateLimitConfig describes one per-client admission limiter.
type RateLimitConfig struct {
	Name         string
	RequestLimit int
	WindowSize   time.Duration
	Message      string
	// KeyFunc extracts the client key; defaults to the RemoteAddr IP, which
	// only reflects proxy headers when the router trusts them.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit returns a limiter that answers 429 with a JSON body and
// RateLimit-* headers once a client exceeds RequestLimit per WindowSize.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithResponseHeaders(httprate.ResponseHeaders{
			Limit:      "RateLimit-Limit",
			Remaining:  "RateLimit-Remaining",
			Reset:      "RateLimit-Reset",
			RetryAfter: "Retry-After",
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.IncRateLimited(cfg.Name)
			logger := xlog.WithComponentFromContext(r.Context(), "ratelimit")
			logger.Warn().
				Str("limiter", cfg.Name).
				Str(xlog.FieldRemote, r.RemoteAddr).
				Str(xlog.FieldPath, r.URL.Path).
				Msg("request rejected")
			w.Header().Set("RateLimit-Remaining", "0")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", cfg.Message, r)
		}),
	)
}

// APIRateLimit covers every /api/ route.
func APIRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		Name:         APILimiterName,
		RequestLimit: limit,
		WindowSize:   window,
		Message:      apiLimitMessage,
	})
}

// DownloadRateLimit is the stricter limiter for the download route.
func DownloadRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		Name:         DownloadLimiterName,
		RequestLimit: limit,
		WindowSize:   window,
		Message:      downloadLimitMessage,
	})
}
