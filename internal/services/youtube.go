package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"vidfetch-backend/internal/extractor"
	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
)

const (
	defaultDescription = "No description available"
	defaultUploader    = "Unknown"
	thumbnailURLFormat = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// MediaExtractor is the slice of the yt-dlp adapter the services depend on.
type MediaExtractor interface {
	FetchInfo(ctx context.Context, url string) (*extractor.RawInfo, error)
	Download(ctx context.Context, req extractor.DownloadRequest) error
}

type YouTubeService struct {
	extractor MediaExtractor
}

func NewYouTubeService(x MediaExtractor) *YouTubeService {
	return &YouTubeService{extractor: x}
}

// ExtractVideoID validates rawURL and returns the 11 character video id it names.
func ExtractVideoID(rawURL string) (string, error) {
	invalid := &ValidationError{
		Message: "Invalid YouTube URL",
		Fields:  map[string]string{"url": "must be a valid YouTube video URL"},
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", &ValidationError{
			Message: "Invalid YouTube URL",
			Fields:  map[string]string{"url": "is required"},
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid
	}
	if !isYouTubeHost(u.Hostname()) {
		return "", invalid
	}

	id, err := yt.ExtractVideoID(rawURL)
	if err != nil || !videoIDPattern.MatchString(id) {
		return "", invalid
	}
	return id, nil
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range []string{"youtube.com", "youtu.be", "youtube-nocookie.com"} {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// IsValidVideoID reports whether id has the shape of a YouTube video id.
func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

func watchURL(videoID string) string {
	return fmt.Sprintf(watchURLFormat, videoID)
}

// GetVideoInfo fetches metadata for rawURL and returns it with a normalized
// format list. The extractor is always handed a canonical watch URL.
func (s *YouTubeService) GetVideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	raw, err := s.extractor.FetchInfo(ctx, watchURL(videoID))
	if err != nil {
		return nil, &ExtractionError{Op: "info", Err: err}
	}

	info := buildVideoInfo(videoID, raw)
	logger := xlog.WithComponentFromContext(ctx, "youtube")
	logger.Info().
		Str(xlog.FieldVideoID, videoID).
		Int("formats", len(info.Formats)).
		Msg("fetched video info")
	return info, nil
}

func buildVideoInfo(videoID string, raw *extractor.RawInfo) *models.VideoInfo {
	info := &models.VideoInfo{
		ID:           raw.ID,
		Title:        raw.Title,
		Description:  raw.Description,
		ThumbnailURL: raw.Thumbnail,
		Uploader:     raw.Uploader,
		Duration:     raw.DurationSeconds(),
		Formats:      NormalizeFormats(raw.Formats),
	}
	if info.ID == "" {
		info.ID = videoID
	}
	if info.Description == "" {
		info.Description = defaultDescription
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = fmt.Sprintf(thumbnailURLFormat, info.ID)
	}
	if info.Uploader == "" {
		info.Uploader = defaultUploader
	}
	return info
}
