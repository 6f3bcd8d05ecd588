package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

const genericErrorMessage = "An unexpected error occurred"

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: xlog.RequestIDFromContext(r.Context()),
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Errors = fields
	return resp
}

// handleServiceError maps typed service errors to responses. Anything
// unrecognized is logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *services.ValidationError
		noFormatsErr    *services.NoFormatsError
		notFoundErr     *services.NotFoundError
		unauthorizedErr *services.UnauthorizedError
		rateLimitErr    *services.RateLimitError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validationErr.Error(), validationErr.Fields, r))
	case errors.As(err, &noFormatsErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("NO_FORMATS", "No downloadable formats found for this video", r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &unauthorizedErr):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorizedErr.Message, r))
	case errors.As(err, &rateLimitErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateLimitErr.Message, r))
	default:
		code := "INTERNAL_ERROR"
		var extractionErr *services.ExtractionError
		if errors.As(err, &extractionErr) {
			code = "EXTRACTION_FAILED"
		}
		logger := xlog.FromContext(r.Context())
		logger.Error().
			Err(err).
			Str(xlog.FieldMethod, r.Method).
			Str(xlog.FieldPath, r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResp(code, genericErrorMessage, r))
	}
}
