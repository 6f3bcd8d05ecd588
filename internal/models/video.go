package models

// MediaKind classifies a format by the streams it carries.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindOther MediaKind = "other"
)

// VideoFormat is one selectable encoding after normalization.
type VideoFormat struct {
	FormatID           string    `json:"formatId"`
	Extension          string    `json:"extension"`
	Quality            string    `json:"quality"`
	QualityLabel       string    `json:"qualityLabel"`
	Type               MediaKind `json:"type"`
	Filesize           uint64    `json:"filesize"`
	FPS                *uint32   `json:"fps,omitempty"`
	RequiresConversion bool      `json:"requiresConversion,omitempty"`
}

type VideoInfo struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	Uploader     string        `json:"uploader"`
	Duration     uint32        `json:"duration"`
	Formats      []VideoFormat `json:"formats"`
}

type VideoInfoRequest struct {
	URL string `json:"url"`
}
