// Package storage saves fetched videos and keeps the attempt history, including cleanup of stale temporary blobs.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediashare/internal/consts"
)

// CleanupStaleBlobs sweeps the temp dir once immediately and then on every tick until ctx is done.
func (stg *storage) CleanupStaleBlobs(ctx context.Context, interval time.Duration) {
	log := stg.log.With(slog.String("action", "cleanup_stale_blobs"), slog.Duration("interval", interval))

	stg.performCleanup(ctx, time.Now())

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			stg.performCleanup(ctx, now)
		case <-ctx.Done():
			log.Info("cleanup stale blobs stopped")

			return
		}
	}
}

func (stg *storage) performCleanup(ctx context.Context, now time.Time) int {
	log := stg.log
	dir := stg.cfg.Dir.Temp

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}

	if err != nil {
		log.ErrorContext(ctx, "read temp dir", slog.String("dir", dir), slog.Any("error", err))

		return 0
	}

	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), consts.TempSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) < stg.cfg.Storage.TempTTL {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		err = os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.ErrorContext(ctx, "failed to delete stale blob", slog.String("path", path), slog.Any("error", err))

			continue
		}

		deleted++

		log.DebugContext(ctx, "stale blob deleted", slog.String("path", path))
	}

	if deleted > 0 {
		log.InfoContext(ctx, "stale blobs removed", slog.Int("count", deleted))

		if stg.metrics != nil {
			stg.metrics.RecordCleanup(deleted)
		}
	}

	return deleted
}
