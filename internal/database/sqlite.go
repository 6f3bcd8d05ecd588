package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, no CGO
)

const sqliteBusyTimeout = 5 * time.Second

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS download_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id   TEXT    NOT NULL,
	format_id  TEXT    NOT NULL,
	title      TEXT,
	extension  TEXT    NOT NULL,
	quality    TEXT    NOT NULL,
	type       TEXT    NOT NULL,
	filesize   INTEGER NOT NULL,
	fps        INTEGER,
	timestamp  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_download_history_timestamp
	ON download_history (timestamp DESC, id DESC);
`

// OpenSQLite opens (creating if needed) the history database at path with
// WAL journaling and a busy timeout, and applies the schema.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, sqliteBusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	// A single writer keeps id allocation and inserts serialized.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return db, nil
}
