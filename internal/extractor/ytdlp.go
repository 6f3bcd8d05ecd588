package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/metrics"
)

const (
	opInfo     = "info"
	opDownload = "download"

	stderrTailBytes = 4096
	waitDelay       = 5 * time.Second
)

type Options struct {
	Binary          string
	InfoTimeout     time.Duration
	DownloadTimeout time.Duration
	MaxConcurrent   int
}

// YtDlp runs the yt-dlp binary. It is safe for concurrent use; at most
// MaxConcurrent subprocesses run at any time.
type YtDlp struct {
	binary          string
	infoTimeout     time.Duration
	downloadTimeout time.Duration
	sem             *semaphore.Weighted
	logger          zerolog.Logger
}

func NewYtDlp(opts Options) *YtDlp {
	binary := opts.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	limit := opts.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	return &YtDlp{
		binary:          binary,
		infoTimeout:     opts.InfoTimeout,
		downloadTimeout: opts.DownloadTimeout,
		sem:             semaphore.NewWeighted(int64(limit)),
		logger:          xlog.WithComponent("extractor"),
	}
}

// FetchInfo dumps the metadata of a single video.
func (y *YtDlp) FetchInfo(ctx context.Context, url string) (*RawInfo, error) {
	out, err := y.run(ctx, opInfo, y.infoTimeout, infoArgs(url))
	if err != nil {
		return nil, err
	}

	var info RawInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, &Error{Op: opInfo, Err: fmt.Errorf("decode metadata: %w", err)}
	}
	return &info, nil
}

// Download materializes req into the file named by its output template.
func (y *YtDlp) Download(ctx context.Context, req DownloadRequest) error {
	_, err := y.run(ctx, opDownload, y.downloadTimeout, downloadArgs(req))
	return err
}

func infoArgs(url string) []string {
	return []string{"--dump-single-json", "--no-warnings", "--no-playlist", url}
}

func downloadArgs(req DownloadRequest) []string {
	args := []string{
		"-f", req.FormatSelector,
		"-o", req.OutputTemplate,
		"--no-warnings",
		"--no-playlist",
		"--no-progress",
	}
	if req.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", req.MergeOutputFormat)
	}
	return append(args, req.URL)
}

func (y *YtDlp) run(ctx context.Context, op string, timeout time.Duration, args []string) ([]byte, error) {
	if err := y.sem.Acquire(ctx, 1); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer y.sem.Release(1)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, y.binary, args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		outcome := "failure"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
			err = ErrTimeout
		}
		metrics.ObserveExtractorRun(op, outcome, elapsed)
		xerr := &Error{Op: op, Err: err, Stderr: stderr.String()}
		y.logger.Error().
			Err(err).
			Str(xlog.FieldOp, op).
			Dur(xlog.FieldDuration, elapsed).
			Str("stderr", xerr.Stderr).
			Msg("extractor run failed")
		return nil, xerr
	}

	metrics.ObserveExtractorRun(op, "success", elapsed)
	y.logger.Debug().Str(xlog.FieldOp, op).Dur(xlog.FieldDuration, elapsed).Msg("extractor run finished")
	return stdout.Bytes(), nil
}

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(bytes.TrimSpace(t.buf))
}
