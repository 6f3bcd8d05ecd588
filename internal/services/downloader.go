package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"vidfetch-backend/internal/extractor"
	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
	"vidfetch-backend/internal/models"
)

const (
	maxFormatIDLen    = 64
	mergeOutputFormat = "mp4"
)

var formatIDPattern = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)

// ErrFileNotFound is returned when the extractor exits cleanly but left no output file.
var ErrFileNotFound = errors.New("file not found post-download")

// Downloader materializes one format of a video into an output directory.
type Downloader struct {
	extractor MediaExtractor
	now       func() time.Time
}

func NewDownloader(x MediaExtractor) *Downloader {
	return &Downloader{extractor: x, now: time.Now}
}

func validateDownload(videoID, formatID string) error {
	fields := map[string]string{}
	if !IsValidVideoID(videoID) {
		fields["videoId"] = "must be an 11 character YouTube video id"
	}
	if formatID == "" || len(formatID) > maxFormatIDLen || !formatIDPattern.MatchString(formatID) {
		fields["formatId"] = "must contain only letters, digits, '_', '+' or '-'"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "Invalid download request", Fields: fields}
	}
	return nil
}

// formatSelector asks for formatID merged with the best m4a audio, then any
// audio, then formatID alone.
func formatSelector(formatID string) string {
	return fmt.Sprintf("%[1]s+bestaudio[ext=m4a]/%[1]s+bestaudio/%[1]s", formatID)
}

// Download runs the extractor for videoID/formatID and describes the file it
// produced. Every call writes a distinct file named
// {videoID}_{formatID}_{unixMillis}.{ext}. Partial files are left for the
// retention sweeper.
func (d *Downloader) Download(ctx context.Context, videoID, formatID, outputDir string) (*models.DownloadResult, error) {
	if err := validateDownload(videoID, formatID); err != nil {
		return nil, err
	}

	logger := xlog.WithComponentFromContext(ctx, "downloader").With().
		Str(xlog.FieldVideoID, videoID).
		Str(xlog.FieldFormatID, formatID).
		Logger()

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := fmt.Sprintf("%s_%s_%d", videoID, formatID, d.now().UnixMilli())
	url := watchURL(videoID)

	start := time.Now()
	err = d.extractor.Download(ctx, extractor.DownloadRequest{
		URL:               url,
		FormatSelector:    formatSelector(formatID),
		OutputTemplate:    filepath.Join(absDir, base+".%(ext)s"),
		MergeOutputFormat: mergeOutputFormat,
	})
	if err != nil {
		metrics.IncDownload("failure")
		return nil, &ExtractionError{Op: "download", Err: err}
	}

	filename, err := findOutput(absDir, base)
	if err != nil {
		metrics.IncDownload("failure")
		return nil, &ExtractionError{Op: "download", Err: err}
	}
	filePath := filepath.Join(absDir, filename)

	raw, err := d.extractor.FetchInfo(ctx, url)
	if err != nil {
		metrics.IncDownload("failure")
		return nil, &ExtractionError{Op: "info", Err: err}
	}

	st, err := os.Stat(filePath)
	if err != nil {
		metrics.IncDownload("failure")
		return nil, &ExtractionError{Op: "download", Err: fmt.Errorf("stat output: %w", err)}
	}

	result := &models.DownloadResult{
		FormatID:  formatID,
		Extension: strings.TrimPrefix(filepath.Ext(filename), "."),
		Quality:   "unknown",
		Type:      models.KindOther,
		Filesize:  uint64(st.Size()),
		FilePath:  filePath,
		Filename:  filename,
	}
	if raw.Title != "" {
		title := raw.Title
		result.Title = &title
	}
	if f, ok := raw.FindFormat(formatID); ok {
		if f.FormatNote != "" {
			result.Quality = f.FormatNote
		}
		result.Type = mediaKindOf(f)
		result.FPS = f.FPSValue()
	}

	metrics.IncDownload("success")
	logger.Info().
		Str(xlog.FieldFilename, filename).
		Uint64("bytes", result.Filesize).
		Dur(xlog.FieldDuration, time.Since(start)).
		Msg("download finished")
	return result, nil
}

// findOutput locates the file the extractor wrote for base, ignoring
// in-progress fragments. A final "base.ext" wins over intermediate
// "base.fNNN.ext" stream files.
func findOutput(dir, base string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	prefix := base + "."
	var fallback string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.Contains(name, ".part-Frag") {
			continue
		}
		if !strings.Contains(strings.TrimPrefix(name, prefix), ".") {
			return name, nil
		}
		if fallback == "" {
			fallback = name
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrFileNotFound
}
