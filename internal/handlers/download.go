package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

var servedFilenamePattern = regexp.MustCompile(`^[A-Za-z0-9_+-][A-Za-z0-9_+.-]*$`)

type mediaDownloader interface {
	Download(ctx context.Context, videoID, formatID, outputDir string) (*models.DownloadResult, error)
}

type historyAppender interface {
	Append(ctx context.Context, r *models.DownloadRecord) (int64, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, msg models.WSMessage) error
}

type DownloadHandler struct {
	downloader mediaDownloader
	history    historyAppender
	events     eventPublisher
	stats      counterIncrementer
	uploadsDir string
}

func NewDownloadHandler(downloader mediaDownloader, history historyAppender, events eventPublisher, stats counterIncrementer, uploadsDir string) *DownloadHandler {
	return &DownloadHandler{
		downloader: downloader,
		history:    history,
		events:     events,
		stats:      stats,
		uploadsDir: uploadsDir,
	}
}

// Create handles POST /api/videos/download. The download keeps running if
// the client disconnects so the file and history entry are not half-made.
func (h *DownloadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Video ID and format ID are required", r))
		return
	}

	req.VideoID = strings.TrimSpace(req.VideoID)
	req.FormatID = strings.TrimSpace(req.FormatID)
	if req.VideoID == "" || req.FormatID == "" {
		fields := map[string]string{}
		if req.VideoID == "" {
			fields["videoId"] = "is required"
		}
		if req.FormatID == "" {
			fields["formatId"] = "is required"
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Video ID and format ID are required", fields, r))
		return
	}

	h.stats.Increment(services.CounterDownloadsStarted)

	ctx := context.WithoutCancel(r.Context())
	result, err := h.downloader.Download(ctx, req.VideoID, req.FormatID, h.uploadsDir)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger := xlog.WithComponentFromContext(ctx, "download")

	record := &models.DownloadRecord{
		VideoID:   req.VideoID,
		FormatID:  result.FormatID,
		Title:     result.Title,
		Extension: result.Extension,
		Quality:   result.Quality,
		Type:      result.Type,
		Filesize:  result.Filesize,
		FPS:       result.FPS,
	}
	if _, err := h.history.Append(ctx, record); err != nil {
		logger.Error().Err(err).Str(xlog.FieldFilename, result.Filename).Msg("failed to record download history")
	} else if err := h.events.Publish(ctx, models.WSMessage{Type: models.EventDownloadCompleted, Payload: record}); err != nil {
		logger.Warn().Err(err).Msg("failed to publish download event")
	}

	writeJSON(w, http.StatusOK, models.DownloadResponse{
		DownloadResult: *result,
		DownloadURL:    "/download/" + url.PathEscape(result.Filename),
	})
}

// Serve handles GET /download/{filename} and streams the file as an attachment.
func (h *DownloadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !isSafeFilename(filename) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid filename", r))
		return
	}

	path := filepath.Join(h.uploadsDir, filename)
	f, err := os.Open(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || !st.Mode().IsRegular() {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	http.ServeContent(ww, r, filename, st.ModTime(), f)

	// Range, conditional and HEAD requests are not completed downloads.
	if r.Method == http.MethodGet && ww.Status() == http.StatusOK && int64(ww.BytesWritten()) == st.Size() {
		h.stats.Increment(services.CounterDownloadsCompleted)
	}
}

// isSafeFilename accepts plain basenames only: no separators, no leading dot.
func isSafeFilename(name string) bool {
	if name == "" || len(name) > 255 || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name && servedFilenamePattern.MatchString(name)
}
