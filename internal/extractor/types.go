package extractor

import "math"

// RawInfo is the subset of yt-dlp's --dump-single-json output this service reads.
// Everything is optional; callers apply their own fallbacks.
type RawInfo struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnail   string      `json:"thumbnail"`
	Uploader    string      `json:"uploader"`
	Duration    *float64    `json:"duration"`
	Formats     []RawFormat `json:"formats"`
}

// RawFormat is one encoding descriptor as reported by the extractor.
// Numeric fields are floats because the tool emits ints, floats or null.
type RawFormat struct {
	FormatID       string   `json:"format_id"`
	Format         string   `json:"format"`
	FormatNote     string   `json:"format_note"`
	Ext            string   `json:"ext"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	FPS            *float64 `json:"fps"`
}

// SizeBytes returns filesize, then filesize_approx, floored; 0 when unknown.
func (f RawFormat) SizeBytes() uint64 {
	for _, v := range []*float64{f.Filesize, f.FilesizeApprox} {
		if v == nil || math.IsNaN(*v) || *v <= 0 {
			continue
		}
		if *v >= math.MaxUint64 {
			return math.MaxUint64
		}
		return uint64(math.Floor(*v))
	}
	return 0
}

// FPSValue returns the frame rate truncated to an integer, or nil if absent or zero.
func (f RawFormat) FPSValue() *uint32 {
	if f.FPS == nil || math.IsNaN(*f.FPS) || *f.FPS < 1 {
		return nil
	}
	v := *f.FPS
	if v > math.MaxUint32 {
		v = math.MaxUint32
	}
	fps := uint32(v)
	return &fps
}

// DurationSeconds returns the reported duration floored to whole seconds.
func (i RawInfo) DurationSeconds() uint32 {
	if i.Duration == nil || math.IsNaN(*i.Duration) || *i.Duration <= 0 {
		return 0
	}
	if *i.Duration > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(*i.Duration)
}

// FindFormat returns the descriptor with the given id.
func (i RawInfo) FindFormat(formatID string) (RawFormat, bool) {
	for _, f := range i.Formats {
		if f.FormatID == formatID {
			return f, true
		}
	}
	return RawFormat{}, false
}

// DownloadRequest describes one media materialization.
type DownloadRequest struct {
	URL               string
	FormatSelector    string
	OutputTemplate    string // yt-dlp -o template, e.g. /uploads/base.%(ext)s
	MergeOutputFormat string
}
