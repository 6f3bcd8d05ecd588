package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vidfetch-backend/internal/models"
)

func login(h *AdminHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	return rr
}

func TestAdminHandler_LoginWithPlainPassword(t *testing.T) {
	h, err := NewAdminHandler("hunter2", "", stubTokens{}, time.Hour, &stubStats{})
	require.NoError(t, err)

	rr := login(h, `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var tok models.AdminToken
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tok))
	assert.Equal(t, "signed-token", tok.Token)
	assert.Equal(t, 3600, tok.ExpiresIn)

	assert.Equal(t, http.StatusUnauthorized, login(h, `{"password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(h, `{}`).Code)
}

func TestAdminHandler_LoginWithHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	h, err := NewAdminHandler("", string(hash), stubTokens{}, time.Hour, &stubStats{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, login(h, `{"password":"s3cret"}`).Code)
}

func TestAdminHandler_LoginDisabled(t *testing.T) {
	h, err := NewAdminHandler("", "", stubTokens{}, time.Hour, &stubStats{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, login(h, `{"password":"x"}`).Code)
}

func TestAdminHandler_Stats(t *testing.T) {
	stats := &stubStats{snap: models.SiteStats{TotalVisits: 12, APICalls: 40}}
	h, err := NewAdminHandler("", "", stubTokens{}, time.Hour, stats)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.Stats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.SiteStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(12), got.TotalVisits)
	assert.Equal(t, int64(40), got.APICalls)
}
