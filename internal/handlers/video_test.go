package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

func postInfo(h *VideoHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/videos/info", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Info(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestVideoHandler_Info_Success(t *testing.T) {
	stats := &stubStats{}
	svc := &stubVideoService{info: &models.VideoInfo{
		ID:      "dQw4w9WgXcQ",
		Title:   "Clip",
		Formats: []models.VideoFormat{{FormatID: "18", Type: models.KindVideo, Filesize: 10}},
	}}
	h := NewVideoHandler(svc, stats)

	rr := postInfo(h, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var info models.VideoInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "Clip", info.Title)
	assert.Contains(t, rr.Body.String(), `"formatId":"18"`)
	assert.Equal(t, 1, stats.count(services.CounterVideosFetched))
}

func TestVideoHandler_Info_InvalidURL(t *testing.T) {
	svc := &stubVideoService{err: &services.ValidationError{
		Message: "Invalid YouTube URL",
		Fields:  map[string]string{"url": "must be a valid YouTube video URL"},
	}}
	h := NewVideoHandler(svc, &stubStats{})

	rr := postInfo(h, `{"url":"nope"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "Invalid YouTube URL", resp.Message)
	assert.Contains(t, resp.Errors, "url")
}

func TestVideoHandler_Info_BadBody(t *testing.T) {
	h := NewVideoHandler(&stubVideoService{}, &stubStats{})

	rr := postInfo(h, `{`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid YouTube URL", decodeError(t, rr).Message)
}

func TestVideoHandler_Info_NoFormats(t *testing.T) {
	stats := &stubStats{}
	h := NewVideoHandler(&stubVideoService{info: &models.VideoInfo{ID: "dQw4w9WgXcQ", Formats: []models.VideoFormat{}}}, stats)

	rr := postInfo(h, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "NO_FORMATS", decodeError(t, rr).Code)
	assert.Zero(t, stats.count(services.CounterVideosFetched))
}

func TestVideoHandler_Info_ExtractionFailureHidesCause(t *testing.T) {
	svc := &stubVideoService{err: &services.ExtractionError{Op: "info", Err: errors.New("ERROR: secret stderr")}}
	h := NewVideoHandler(svc, &stubStats{})

	rr := postInfo(h, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret stderr")
	assert.Equal(t, genericErrorMessage, decodeError(t, rr).Message)
}

func TestVideoHandler_Info_ExtractionFailureLogsCause(t *testing.T) {
	var buf bytes.Buffer
	defer xlog.Replace(zerolog.New(&buf))()

	svc := &stubVideoService{err: &services.ExtractionError{Op: "info", Err: errors.New("ERROR: secret stderr")}}
	h := NewVideoHandler(svc, &stubStats{})

	req := httptest.NewRequest(http.MethodPost, "/api/videos/info", strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	req = req.WithContext(xlog.ContextWithRequestID(req.Context(), "req-500"))
	rr := httptest.NewRecorder()
	h.Info(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "secret stderr")
	assert.Contains(t, buf.String(), `"request_id":"req-500"`)
}
