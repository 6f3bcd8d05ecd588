package handlers

import (
	"context"
	"net/http"

	"vidfetch-backend/internal/models"
)

type historyLister interface {
	ListAll(ctx context.Context) ([]models.DownloadRecord, error)
}

type HistoryHandler struct {
	history historyLister
}

func NewHistoryHandler(history historyLister) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/downloads/history, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []models.DownloadRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
