package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidfetch-backend/internal/models"
)

type PostgresHistoryRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresHistoryRepo(pool *pgxpool.Pool) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{pool: pool, now: time.Now}
}

func (r *PostgresHistoryRepo) Append(ctx context.Context, rec *models.DownloadRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}

	var fps *int32
	if rec.FPS != nil {
		v := int32(*rec.FPS)
		fps = &v
	}

	query := `INSERT INTO download_history
		(video_id, format_id, title, extension, quality, type, filesize, fps, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		rec.VideoID, rec.FormatID, rec.Title, rec.Extension, rec.Quality,
		string(rec.Type), int64(rec.Filesize), fps, rec.Timestamp,
	).Scan(&rec.ID)
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}
	return rec.ID, nil
}

func (r *PostgresHistoryRepo) ListAll(ctx context.Context) ([]models.DownloadRecord, error) {
	query := `SELECT id, video_id, format_id, title, extension, quality, type, filesize, fps, timestamp
		FROM download_history
		ORDER BY timestamp DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []models.DownloadRecord{}
	for rows.Next() {
		rec, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// scanHistoryRow reads one row in the column order of ListAll.
func scanHistoryRow(row pgx.Row) (models.DownloadRecord, error) {
	var (
		rec      models.DownloadRecord
		kind     string
		filesize int64
		fps      *int32
	)
	if err := row.Scan(&rec.ID, &rec.VideoID, &rec.FormatID, &rec.Title, &rec.Extension,
		&rec.Quality, &kind, &filesize, &fps, &rec.Timestamp); err != nil {
		return models.DownloadRecord{}, fmt.Errorf("scan history: %w", err)
	}
	rec.Type = models.MediaKind(kind)
	if filesize > 0 {
		rec.Filesize = uint64(filesize)
	}
	if fps != nil && *fps > 0 {
		v := uint32(*fps)
		rec.FPS = &v
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}
