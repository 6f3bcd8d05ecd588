package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler())

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", http.MethodPost, "http://localhost:5173", false, http.StatusOK, "http://localhost:5173"},
		{"unknown origin gets no headers", http.MethodPost, "https://evil.example", false, http.StatusOK, ""},
		{"no origin passes through", http.MethodGet, "", false, http.StatusOK, ""},
		{"preflight answered", http.MethodOptions, "http://localhost:5173", true, http.StatusNoContent, "http://localhost:5173"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/videos/info", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.preflight {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/history", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://anywhere.example", rr.Header().Get("Access-Control-Allow-Origin"))
}
