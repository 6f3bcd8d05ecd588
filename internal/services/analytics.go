package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/models"
)

// Counter names one SiteStats field.
type Counter string

const (
	CounterVisits             Counter = "visits"
	CounterAPICalls           Counter = "api_calls"
	CounterVideosFetched      Counter = "videos_fetched"
	CounterDownloadsStarted   Counter = "downloads_started"
	CounterDownloadsCompleted Counter = "downloads_completed"
)

// apiCallsFlushEvery bounds how often the hot api_calls counter hits disk.
const apiCallsFlushEvery = 10

// Analytics owns the site counters and their stats.json file.
type Analytics struct {
	mu     sync.Mutex
	path   string
	stats  models.SiteStats
	dirty  bool
	now    func() time.Time
	logger zerolog.Logger
}

// LoadAnalytics reads path, or starts from zero and writes it when the file
// is missing. A corrupt file is logged and replaced by zero counters.
func LoadAnalytics(path string) (*Analytics, error) {
	a := &Analytics{
		path:   path,
		now:    time.Now,
		logger: xlog.WithComponent("analytics"),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.stats.LastUpdated = a.timestamp()
		if err := a.persist(); err != nil {
			return nil, err
		}
		return a, nil
	case err != nil:
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	if err := json.Unmarshal(data, &a.stats); err != nil {
		a.logger.Warn().Err(err).Str(xlog.FieldPath, path).Msg("stats file is corrupt, starting from zero")
		a.stats = models.SiteStats{LastUpdated: a.timestamp()}
	}
	return a, nil
}

func (a *Analytics) timestamp() string {
	return a.now().UTC().Format(time.RFC3339)
}

// Increment bumps one counter. Every mutation is persisted except api_calls,
// which is written every tenth call; Flush writes whatever is pending.
func (a *Analytics) Increment(c Counter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	write := true
	switch c {
	case CounterVisits:
		a.stats.TotalVisits++
	case CounterAPICalls:
		a.stats.APICalls++
		write = a.stats.APICalls%apiCallsFlushEvery == 0
	case CounterVideosFetched:
		a.stats.VideosFetched++
	case CounterDownloadsStarted:
		a.stats.DownloadsStarted++
	case CounterDownloadsCompleted:
		a.stats.DownloadsCompleted++
	default:
		a.logger.Warn().Str("counter", string(c)).Msg("unknown counter")
		return
	}
	a.stats.LastUpdated = a.timestamp()
	a.dirty = true

	if write {
		if err := a.persist(); err != nil {
			a.logger.Error().Err(err).Str(xlog.FieldPath, a.path).Msg("failed to save stats")
		}
	}
}

// Snapshot returns a copy of the current counters.
func (a *Analytics) Snapshot() models.SiteStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Flush writes pending changes to disk.
func (a *Analytics) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.dirty {
		return nil
	}
	return a.persist()
}

// persist must be called with mu held.
func (a *Analytics) persist() error {
	if dir := filepath.Dir(a.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(a.stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(a.path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending stats file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			a.logger.Debug().Err(err).Msg("cleanup pending stats file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace stats file: %w", err)
	}

	a.dirty = false
	return nil
}
