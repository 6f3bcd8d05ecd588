package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

type videoInfoService interface {
	GetVideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error)
}

// counterIncrementer is satisfied by services.Analytics.
type counterIncrementer interface {
	Increment(c services.Counter)
}

type VideoHandler struct {
	videos videoInfoService
	stats  counterIncrementer
}

func NewVideoHandler(videos videoInfoService, stats counterIncrementer) *VideoHandler {
	return &VideoHandler{videos: videos, stats: stats}
}

// Info handles POST /api/videos/info.
func (h *VideoHandler) Info(w http.ResponseWriter, r *http.Request) {
	var req models.VideoInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid YouTube URL",
			map[string]string{"url": "request body must be JSON with a url field"}, r))
		return
	}

	info, err := h.videos.GetVideoInfo(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if len(info.Formats) == 0 {
		handleServiceError(w, r, &services.NoFormatsError{VideoID: info.ID})
		return
	}

	h.stats.Increment(services.CounterVideosFetched)
	writeJSON(w, http.StatusOK, info)
}
