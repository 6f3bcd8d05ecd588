package middleware

import (
	"net/http"
	"strings"

	"vidfetch-backend/internal/services"
)

// CounterIncrementer is satisfied by services.Analytics.
type CounterIncrementer interface {
	Increment(c services.Counter)
}

// TrackTraffic counts page visits (GET outside /api/ and /assets/) and API
// calls. Probe and scrape endpoints are not counted.
func TrackTraffic(stats CounterIncrementer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case strings.HasPrefix(path, "/api/"):
				stats.Increment(services.CounterAPICalls)
			case path == "/health" || path == "/metrics":
			case r.Method == http.MethodGet && !strings.HasPrefix(path, "/assets/"):
				stats.Increment(services.CounterVisits)
			}
			next.ServeHTTP(w, r)
		})
	}
}
