package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidfetch-backend/internal/models"
)

func readStats(t *testing.T, path string) models.SiteStats {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s models.SiteStats
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestLoadAnalytics_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "stats.json")

	a, err := LoadAnalytics(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Zero(t, a.Snapshot().TotalVisits)
	assert.NotEmpty(t, readStats(t, path).LastUpdated)
}

func TestLoadAnalytics_ReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"totalVisits":7,"apiCalls":3,"downloadsCompleted":2}`), 0o644))

	a, err := LoadAnalytics(path)
	require.NoError(t, err)

	s := a.Snapshot()
	assert.Equal(t, int64(7), s.TotalVisits)
	assert.Equal(t, int64(3), s.APICalls)
	assert.Equal(t, int64(2), s.DownloadsCompleted)
}

func TestLoadAnalytics_CorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	a, err := LoadAnalytics(path)
	require.NoError(t, err)
	assert.Equal(t, models.SiteStats{LastUpdated: a.Snapshot().LastUpdated}, a.Snapshot())
}

func TestAnalytics_IncrementPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	a, err := LoadAnalytics(path)
	require.NoError(t, err)

	a.Increment(CounterVisits)
	a.Increment(CounterVideosFetched)
	a.Increment(CounterDownloadsStarted)
	a.Increment(CounterDownloadsCompleted)

	onDisk := readStats(t, path)
	assert.Equal(t, int64(1), onDisk.TotalVisits)
	assert.Equal(t, int64(1), onDisk.VideosFetched)
	assert.Equal(t, int64(1), onDisk.DownloadsStarted)
	assert.Equal(t, int64(1), onDisk.DownloadsCompleted)
}

func TestAnalytics_APICallsBatched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	a, err := LoadAnalytics(path)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		a.Increment(CounterAPICalls)
	}
	assert.Zero(t, readStats(t, path).APICalls)
	assert.Equal(t, int64(9), a.Snapshot().APICalls)

	a.Increment(CounterAPICalls)
	assert.Equal(t, int64(10), readStats(t, path).APICalls)

	a.Increment(CounterAPICalls)
	require.NoError(t, a.Flush())
	assert.Equal(t, int64(11), readStats(t, path).APICalls)
}

func TestAnalytics_ConcurrentIncrements(t *testing.T) {
	a, err := LoadAnalytics(filepath.Join(t.TempDir(), "stats.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Increment(CounterAPICalls)
			a.Increment(CounterVisits)
		}()
	}
	wg.Wait()

	s := a.Snapshot()
	assert.Equal(t, int64(50), s.APICalls)
	assert.Equal(t, int64(50), s.TotalVisits)
}
