package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidfetch-backend/internal/extractor"
	"vidfetch-backend/internal/models"
)

const testVideoID = "dQw4w9WgXcQ"

// writeOutput returns a download hook that creates the templated file with ext.
func writeOutput(ext string, size int) func(extractor.DownloadRequest) error {
	return func(req extractor.DownloadRequest) error {
		path := strings.Replace(req.OutputTemplate, "%(ext)s", ext, 1)
		return os.WriteFile(path, make([]byte, size), 0o644)
	}
}

func sampleInfo() *extractor.RawInfo {
	return &extractor.RawInfo{
		ID:    testVideoID,
		Title: "Never Gonna Give You Up",
		Formats: []extractor.RawFormat{
			{FormatID: "137", VCodec: strp("avc1"), ACodec: strp("none"), Ext: "mp4", FormatNote: "1080p", Filesize: f64p(60e6), FPS: f64p(25)},
			{FormatID: "140", VCodec: strp("none"), ACodec: strp("mp4a"), Ext: "m4a", FormatNote: "medium", Filesize: f64p(3e6)},
		},
	}
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestDownload_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	fx := &fakeExtractor{info: sampleInfo(), onDownload: writeOutput("mp4", 2048)}
	d := NewDownloader(fx)
	d.now = fixedClock(1700000000123)

	res, err := d.Download(context.Background(), testVideoID, "137", dir)
	require.NoError(t, err)

	require.Len(t, fx.downloads, 1)
	req := fx.downloads[0]
	assert.Equal(t, "137+bestaudio[ext=m4a]/137+bestaudio/137", req.FormatSelector)
	assert.Equal(t, "mp4", req.MergeOutputFormat)
	assert.Equal(t, "https://www.youtube.com/watch?v="+testVideoID, req.URL)
	assert.True(t, strings.HasSuffix(req.OutputTemplate, testVideoID+"_137_1700000000123.%(ext)s"))

	assert.Equal(t, testVideoID+"_137_1700000000123.mp4", res.Filename)
	assert.Equal(t, "mp4", res.Extension)
	assert.Equal(t, "1080p", res.Quality)
	assert.Equal(t, models.KindVideo, res.Type)
	assert.Equal(t, uint64(2048), res.Filesize)
	require.NotNil(t, res.FPS)
	assert.Equal(t, uint32(25), *res.FPS)
	require.NotNil(t, res.Title)
	assert.Equal(t, "Never Gonna Give You Up", *res.Title)
	assert.True(t, filepath.IsAbs(res.FilePath))
	assert.FileExists(t, res.FilePath)
}

func TestDownload_DistinctFilenamesAcrossMilliseconds(t *testing.T) {
	dir := t.TempDir()
	fx := &fakeExtractor{info: sampleInfo(), onDownload: writeOutput("m4a", 10)}
	d := NewDownloader(fx)

	d.now = fixedClock(1000)
	first, err := d.Download(context.Background(), testVideoID, "140", dir)
	require.NoError(t, err)

	d.now = fixedClock(1001)
	second, err := d.Download(context.Background(), testVideoID, "140", dir)
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.FileExists(t, first.FilePath)
	assert.FileExists(t, second.FilePath)
	assert.Equal(t, models.KindAudio, second.Type)
}

func TestDownload_Validation(t *testing.T) {
	tests := []struct {
		name      string
		videoID   string
		formatID  string
		wantField string
	}{
		{"empty video", "", "18", "videoId"},
		{"short video", "abc", "18", "videoId"},
		{"path in video", "../../etc/p", "18", "videoId"},
		{"empty format", testVideoID, "", "formatId"},
		{"selector injection", testVideoID, "18/best", "formatId"},
		{"too long", testVideoID, strings.Repeat("a", 65), "formatId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &fakeExtractor{info: sampleInfo()}
			d := NewDownloader(fx)

			_, err := d.Download(context.Background(), tt.videoID, tt.formatID, t.TempDir())
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
			assert.Empty(t, fx.downloads)
		})
	}
}

func TestDownload_ExtractorFailure(t *testing.T) {
	cause := errors.New("exit status 1")
	d := NewDownloader(&fakeExtractor{info: sampleInfo(), downloadErr: cause})

	_, err := d.Download(context.Background(), testVideoID, "18", t.TempDir())

	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "download", xerr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestDownload_NoOutputFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(&fakeExtractor{info: sampleInfo()})
	d.now = fixedClock(42)

	// A leftover fragment must not be mistaken for the result.
	require.NoError(t, os.WriteFile(filepath.Join(dir, testVideoID+"_18_42.mp4.part"), nil, 0o644))

	_, err := d.Download(context.Background(), testVideoID, "18", dir)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestDownload_MetadataRequeryFailure(t *testing.T) {
	fx := &fakeExtractor{infoErr: errors.New("boom"), onDownload: writeOutput("mp4", 1)}
	d := NewDownloader(fx)

	_, err := d.Download(context.Background(), testVideoID, "18", t.TempDir())

	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "info", xerr.Op)
}

func TestDownload_UnknownFormatInMetadata(t *testing.T) {
	fx := &fakeExtractor{info: &extractor.RawInfo{}, onDownload: writeOutput("webm", 5)}
	d := NewDownloader(fx)

	res, err := d.Download(context.Background(), testVideoID, "999", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "webm", res.Extension)
	assert.Equal(t, "unknown", res.Quality)
	assert.Equal(t, models.KindOther, res.Type)
	assert.Nil(t, res.Title)
	assert.Nil(t, res.FPS)
}

func TestFindOutput_PrefersMergedFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.f137.mp4", "b.mp4", "other.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := findOutput(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, "b.mp4", got)
}
