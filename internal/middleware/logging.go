package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
)

// RequestLogger logs one line per request and records it in the HTTP metrics.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.ObserveHTTPRequest(route, r.Method, strconv.Itoa(status/100)+"xx")

		logger := xlog.WithComponentFromContext(r.Context(), "http")
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str(xlog.FieldMethod, r.Method).
			Str(xlog.FieldPath, r.URL.Path).
			Int(xlog.FieldStatus, status).
			Int("bytes", ww.BytesWritten()).
			Dur(xlog.FieldDuration, time.Since(start)).
			Str(xlog.FieldRemote, r.RemoteAddr).
			Msg("request")
	})
}
