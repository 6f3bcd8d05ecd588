package services

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
)

const (
	DefaultRetentionTTL      = 24 * time.Hour
	DefaultRetentionInterval = time.Hour
)

// RetentionSweeper deletes downloaded files older than a TTL.
type RetentionSweeper struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	logger   zerolog.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRetentionSweeper(dir string, ttl, interval time.Duration) *RetentionSweeper {
	if ttl <= 0 {
		ttl = DefaultRetentionTTL
	}
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionSweeper{
		dir:      dir,
		ttl:      ttl,
		interval: interval,
		logger:   xlog.WithComponent("retention"),
		stopChan: make(chan struct{}),
	}
}

// Start sweeps once immediately and then every interval until Stop.
func (s *RetentionSweeper) Start() {
	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Str(xlog.FieldPath, s.dir).
		Dur("ttl", s.ttl).
		Dur("interval", s.interval).
		Msg("retention sweeper started")
}

// Stop ends the loop and waits for an in-flight sweep. Safe to call twice.
func (s *RetentionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *RetentionSweeper) loop() {
	defer s.wg.Done()

	// Run on startup as well as by interval.
	s.Sweep(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep deletes regular files whose age at now exceeds the TTL and returns
// how many were removed. Failures are logged and skipped.
func (s *RetentionSweeper) Sweep(now time.Time) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str(xlog.FieldPath, s.dir).Msg("uploads dir missing, nothing to sweep")
		} else {
			metrics.IncRetentionError()
			s.logger.Error().Err(err).Str(xlog.FieldPath, s.dir).Msg("failed to list uploads dir")
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(s.dir, e.Name())

		info, err := e.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				metrics.IncRetentionError()
				s.logger.Warn().Err(err).Str(xlog.FieldFilename, e.Name()).Msg("failed to stat file")
			}
			continue
		}
		if now.Sub(info.ModTime()) <= s.ttl {
			continue
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			metrics.IncRetentionError()
			s.logger.Warn().Err(err).Str(xlog.FieldFilename, e.Name()).Msg("failed to delete expired file")
			continue
		}
		removed++
		s.logger.Info().Str(xlog.FieldFilename, e.Name()).Msg("deleted expired file")
	}

	if removed > 0 {
		metrics.AddRetentionRemoved(removed)
	}
	return removed
}
