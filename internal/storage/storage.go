package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"mediashare/internal/config"
	"mediashare/internal/downloader"
	"mediashare/internal/entity"
	"mediashare/internal/errs"
	"mediashare/internal/observability"
)

// maxCollisions bounds the "name (n).ext" search.
const maxCollisions = 1000

// Storer defines the interface for storage operations.
type Storer interface {
	// Save moves a fetched blob into the downloads directory under filename and
	// returns the final path. The blob is released whether or not Save succeeds.
	Save(ctx context.Context, blob *downloader.Blob, filename string) (string, error)

	SetAttempt(ctx context.Context, attempt entity.Attempt)
	GetAttempts(ctx context.Context) []entity.Attempt

	CleanupStaleBlobs(ctx context.Context, interval time.Duration)
}

type storage struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics

	mu       sync.RWMutex
	saveMu   sync.Mutex
	attempts []entity.Attempt
}

// New creates a storage instance rooted at cfg.Dir.
func New(log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) Storer {
	return &storage{
		log:     log.With(slog.String("package", "storage")),
		cfg:     cfg,
		metrics: metrics,
	}
}

func (stg *storage) Save(ctx context.Context, blob *downloader.Blob, filename string) (string, error) {
	defer func() {
		if err := blob.Release(); err != nil {
			stg.log.WarnContext(ctx, "release blob", slog.String("path", blob.Path), slog.Any("error", err))
		}
	}()

	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid filename %q", errs.ErrSaveFailed, filename)
	}

	err := os.MkdirAll(stg.cfg.Dir.Downloads, 0o755)
	if err != nil {
		return "", fmt.Errorf("%w: create downloads dir: %w", errs.ErrSaveFailed, err)
	}

	stg.saveMu.Lock()
	defer stg.saveMu.Unlock()

	dst, err := stg.reservePath(filename)
	if err != nil {
		return "", err
	}

	// the blob replaces the empty placeholder reservePath created
	err = os.Rename(blob.Path, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = copyFile(blob.Path, dst)
	}

	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			stg.log.WarnContext(ctx, "remove reserved path", slog.String("path", dst), slog.Any("error", rmErr))
		}

		return "", fmt.Errorf("%w: move blob: %w", errs.ErrSaveFailed, err)
	}

	stg.log.DebugContext(ctx, "blob saved", slog.String("path", dst), slog.Int64("bytes", blob.Size))

	return dst, nil
}

// reservePath mirrors browser behaviour: clip.mp4, clip (1).mp4, clip (2).mp4, ...
// The chosen name is created exclusively, so a file written by another process
// in the meantime is skipped instead of overwritten.
func (stg *storage) reservePath(filename string) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for n := range maxCollisions {
		name := filename
		if n > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}

		path := filepath.Join(stg.cfg.Dir.Downloads, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}

		if err != nil {
			return "", fmt.Errorf("%w: reserve %q: %w", errs.ErrSaveFailed, path, err)
		}

		err = f.Close()
		if err != nil {
			return "", fmt.Errorf("%w: reserve %q: %w", errs.ErrSaveFailed, path, err)
		}

		return path, nil
	}

	return "", fmt.Errorf("%w: too many files named %q", errs.ErrSaveFailed, filename)
}

// copyFile writes src to a sibling temp file of dst and renames it into place,
// so dst never exists half-written.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mediashare-*.part")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}

func (stg *storage) SetAttempt(ctx context.Context, attempt entity.Attempt) {
	if attempt.ID == "" {
		stg.log.ErrorContext(ctx, "set attempt: empty id")

		return
	}

	stg.mu.Lock()
	defer stg.mu.Unlock()

	for i := range stg.attempts {
		if stg.attempts[i].ID == attempt.ID {
			stg.attempts[i] = attempt

			return
		}
	}

	stg.attempts = append(stg.attempts, attempt)
}

// GetAttempts returns attempts oldest first.
func (stg *storage) GetAttempts(_ context.Context) []entity.Attempt {
	stg.mu.RLock()
	defer stg.mu.RUnlock()

	out := make([]entity.Attempt, len(stg.attempts))
	copy(out, stg.attempts)

	return out
}
