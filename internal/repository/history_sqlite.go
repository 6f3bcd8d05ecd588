package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vidfetch-backend/internal/models"
)

// SQLiteHistoryRepo stores history in the download_history table.
// Timestamps are kept as unix milliseconds.
type SQLiteHistoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteHistoryRepo(db *sql.DB) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: db, now: time.Now}
}

func (r *SQLiteHistoryRepo) Append(ctx context.Context, rec *models.DownloadRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}

	query := `INSERT INTO download_history
		(video_id, format_id, title, extension, quality, type, filesize, fps, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rec.VideoID, rec.FormatID, nullString(rec.Title), rec.Extension, rec.Quality,
		string(rec.Type), int64(rec.Filesize), nullFPS(rec.FPS), rec.Timestamp.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert history id: %w", err)
	}
	rec.ID = id
	rec.Timestamp = time.UnixMilli(rec.Timestamp.UnixMilli()).UTC()
	return id, nil
}

func (r *SQLiteHistoryRepo) ListAll(ctx context.Context) ([]models.DownloadRecord, error) {
	query := `SELECT id, video_id, format_id, title, extension, quality, type, filesize, fps, timestamp
		FROM download_history
		ORDER BY timestamp DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []models.DownloadRecord{}
	for rows.Next() {
		var (
			rec      models.DownloadRecord
			title    sql.NullString
			fps      sql.NullInt64
			kind     string
			filesize int64
			tsMillis int64
		)
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.FormatID, &title, &rec.Extension,
			&rec.Quality, &kind, &filesize, &fps, &tsMillis); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Type = models.MediaKind(kind)
		rec.Filesize = uint64(filesize)
		rec.Timestamp = time.UnixMilli(tsMillis).UTC()
		if title.Valid {
			rec.Title = &title.String
		}
		if fps.Valid {
			v := uint32(fps.Int64)
			rec.FPS = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFPS(fps *uint32) sql.NullInt64 {
	if fps == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*fps), Valid: true}
}
