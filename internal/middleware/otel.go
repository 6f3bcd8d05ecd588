package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// OTelHTTP wraps the handler with OpenTelemetry HTTP instrumentation using
// the global tracer provider.
func OTelHTTP(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(
			next,
			serviceName,
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
			otelhttp.WithFilter(shouldTrace),
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// shouldTrace skips probes and scrapes.
func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/metrics":
		return false
	}
	return true
}
