package repository

import (
	"context"
	"sync"
	"time"

	"vidfetch-backend/internal/models"
)

// MemoryHistoryRepo keeps the history for the life of the process.
type MemoryHistoryRepo struct {
	mu      sync.RWMutex
	records map[int64]models.DownloadRecord
	nextID  int64
	now     func() time.Time
}

func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{
		records: make(map[int64]models.DownloadRecord),
		nextID:  1,
		now:     time.Now,
	}
}

func (r *MemoryHistoryRepo) Append(_ context.Context, rec *models.DownloadRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	r.nextID++
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}
	r.records[rec.ID] = *rec
	return rec.ID, nil
}

func (r *MemoryHistoryRepo) ListAll(_ context.Context) ([]models.DownloadRecord, error) {
	r.mu.RLock()
	out := make([]models.DownloadRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}
