package middleware

import (
	"encoding/json"
	"net/http"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
)

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: xlog.RequestIDFromContext(r.Context()),
	})
}
