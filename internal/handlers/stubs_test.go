package handlers

import (
	"context"
	"sync"

	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
)

type stubStats struct {
	mu     sync.Mutex
	counts map[services.Counter]int
	snap   models.SiteStats
}

func (s *stubStats) Increment(c services.Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[services.Counter]int{}
	}
	s.counts[c]++
}

func (s *stubStats) count(c services.Counter) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[c]
}

func (s *stubStats) Snapshot() models.SiteStats { return s.snap }

type stubVideoService struct {
	info *models.VideoInfo
	err  error
}

func (s *stubVideoService) GetVideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error) {
	return s.info, s.err
}

type stubDownloader struct {
	result *models.DownloadResult
	err    error
	ctxErr error
}

func (s *stubDownloader) Download(ctx context.Context, videoID, formatID, outputDir string) (*models.DownloadResult, error) {
	s.ctxErr = ctx.Err()
	return s.result, s.err
}

type stubHistory struct {
	records []models.DownloadRecord
	err     error
}

func (s *stubHistory) Append(ctx context.Context, r *models.DownloadRecord) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	r.ID = int64(len(s.records) + 1)
	s.records = append(s.records, *r)
	return r.ID, nil
}

func (s *stubHistory) ListAll(ctx context.Context) ([]models.DownloadRecord, error) {
	return s.records, s.err
}

type stubPublisher struct {
	events []models.WSMessage
}

func (s *stubPublisher) Publish(ctx context.Context, msg models.WSMessage) error {
	s.events = append(s.events, msg)
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateToken() (string, error) { return "signed-token", nil }
