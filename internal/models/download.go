package models

import "time"

type DownloadRequest struct {
	VideoID  string `json:"videoId"`
	FormatID string `json:"formatId"`
}

// DownloadResult describes a file materialized in the uploads directory.
type DownloadResult struct {
	FormatID  string    `json:"formatId"`
	Extension string    `json:"extension"`
	Quality   string    `json:"quality"`
	Type      MediaKind `json:"type"`
	Filesize  uint64    `json:"filesize"`
	FPS       *uint32   `json:"fps"`
	Title     *string   `json:"title"`
	FilePath  string    `json:"filePath"`
	Filename  string    `json:"filename"`
}

type DownloadResponse struct {
	DownloadResult
	DownloadURL string `json:"downloadUrl"`
}

// DownloadRecord is an immutable history entry written when a download completes.
type DownloadRecord struct {
	ID        int64     `json:"id"`
	VideoID   string    `json:"videoId"`
	FormatID  string    `json:"formatId"`
	Title     *string   `json:"title"`
	Extension string    `json:"extension"`
	Quality   string    `json:"quality"`
	Type      MediaKind `json:"type"`
	Filesize  uint64    `json:"filesize"`
	FPS       *uint32   `json:"fps"`
	Timestamp time.Time `json:"timestamp"`
}
