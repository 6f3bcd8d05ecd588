package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

type tokenIssuer interface {
	GenerateToken() (string, error)
}

type statsSnapshotter interface {
	Snapshot() models.SiteStats
}

type AdminHandler struct {
	passwordHash []byte
	tokens       tokenIssuer
	tokenTTL     time.Duration
	stats        statsSnapshotter
}

// NewAdminHandler prefers passwordHash (bcrypt) and otherwise hashes the
// plain password once. With neither set, login is disabled.
func NewAdminHandler(password, passwordHash string, tokens tokenIssuer, tokenTTL time.Duration, stats statsSnapshotter) (*AdminHandler, error) {
	h := &AdminHandler{tokens: tokens, tokenTTL: tokenTTL, stats: stats}

	switch {
	case passwordHash != "":
		h.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		h.passwordHash = hash
	}
	return h, nil
}

func (h *AdminHandler) enabled() bool {
	return len(h.passwordHash) > 0
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		handleServiceError(w, r, &services.NotFoundError{Message: "Not found"})
		return
	}

	var req models.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Password is required",
			map[string]string{"password": "is required"}, r))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		handleServiceError(w, r, &services.UnauthorizedError{Message: "Invalid password"})
		return
	}

	token, err := h.tokens.GenerateToken()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AdminToken{
		Token:     token,
		ExpiresIn: int(h.tokenTTL.Seconds()),
	})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}
