package repository

import (
	"context"
	"sort"

	"vidfetch-backend/internal/models"
)

// HistoryRepository is the append-only download log. Records are never
// updated or deleted.
type HistoryRepository interface {
	// Append stores r, assigning its ID and, when zero, its Timestamp.
	Append(ctx context.Context, r *models.DownloadRecord) (int64, error)
	// ListAll returns every record, newest first; ties are broken by ID descending.
	ListAll(ctx context.Context) ([]models.DownloadRecord, error)
}

func sortNewestFirst(records []models.DownloadRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})
}
