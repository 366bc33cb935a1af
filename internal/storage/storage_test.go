package storage

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediashare/internal/config"
	"mediashare/internal/downloader"
	"mediashare/internal/entity"
	"mediashare/internal/errs"
	"mediashare/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestStorage(t *testing.T) (*storage, *config.Config, *observability.Metrics) {
	t.Helper()

	cfg := &config.Config{
		Dir: config.Dir{
			Downloads: filepath.Join(t.TempDir(), "downloads"),
			Temp:      t.TempDir(),
		},
		Storage: config.Storage{TempTTL: time.Hour},
	}
	metrics := observability.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, cfg, metrics).(*storage), cfg, metrics
}

func writeBlob(t *testing.T, dir, content string) *downloader.Blob {
	t.Helper()

	f, err := os.CreateTemp(dir, "mediashare-*.part")
	if err != nil {
		t.Fatalf("create temp blob: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp blob: %v", err)
	}

	return &downloader.Blob{Path: f.Name(), Size: int64(len(content)), MimeType: "video/mp4"}
}

func TestSave(t *testing.T) {
	stg, cfg, _ := newTestStorage(t)
	blob := writeBlob(t, cfg.Dir.Temp, "video")

	path, err := stg.Save(t.Context(), blob, "clip.mp4")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := filepath.Join(cfg.Dir.Downloads, "clip.mp4")
	if path != want {
		t.Errorf("Save() path = %q, want %q", path, want)
	}

	got, err := os.ReadFile(path)
	if err != nil || string(got) != "video" {
		t.Errorf("saved content = %q, %v; want %q", got, err, "video")
	}

	if !blob.Released() {
		t.Error("blob not released after Save")
	}

	if _, err := os.Stat(blob.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp blob still on disk: %v", err)
	}
}

func TestSaveCollisionNames(t *testing.T) {
	stg, cfg, _ := newTestStorage(t)

	want := []string{"clip.mp4", "clip (1).mp4", "clip (2).mp4"}

	for i, name := range want {
		path, err := stg.Save(t.Context(), writeBlob(t, cfg.Dir.Temp, name), "clip.mp4")
		if err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}

		if filepath.Base(path) != name {
			t.Errorf("Save() #%d name = %q, want %q", i, filepath.Base(path), name)
		}

		got, _ := os.ReadFile(path)
		if string(got) != name {
			t.Errorf("Save() #%d content = %q, want %q", i, got, name)
		}
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	stg, cfg, _ := newTestStorage(t)

	if err := os.MkdirAll(cfg.Dir.Downloads, 0o755); err != nil {
		t.Fatal(err)
	}

	mine := filepath.Join(cfg.Dir.Downloads, "clip.mp4")
	if err := os.WriteFile(mine, []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	// a dangling symlink still occupies its name
	if err := os.Symlink(filepath.Join(cfg.Dir.Downloads, "gone"), filepath.Join(cfg.Dir.Downloads, "clip (1).mp4")); err != nil {
		t.Fatal(err)
	}

	path, err := stg.Save(t.Context(), writeBlob(t, cfg.Dir.Temp, "video"), "clip.mp4")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if filepath.Base(path) != "clip (2).mp4" {
		t.Errorf("Save() name = %q, want %q", filepath.Base(path), "clip (2).mp4")
	}

	if got, _ := os.ReadFile(mine); string(got) != "mine" {
		t.Errorf("existing file content = %q, want untouched", got)
	}

	if _, err := os.Lstat(filepath.Join(cfg.Dir.Downloads, "gone")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("save wrote through the symlink: %v", err)
	}
}

func TestSaveMoveFailureDropsReservation(t *testing.T) {
	stg, cfg, _ := newTestStorage(t)

	blob := &downloader.Blob{Path: filepath.Join(cfg.Dir.Temp, "vanished.part"), MimeType: "video/mp4"}

	_, err := stg.Save(t.Context(), blob, "clip.mp4")
	if !errors.Is(err, errs.ErrSaveFailed) {
		t.Fatalf("Save() error = %v, want %v", err, errs.ErrSaveFailed)
	}

	entries, err := os.ReadDir(cfg.Dir.Downloads)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 0 {
		t.Errorf("downloads dir holds %d entries, want the reservation removed", len(entries))
	}
}

func TestSaveFailureReleasesBlob(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		prepare  func(t *testing.T, cfg *config.Config)
	}{
		{name: "empty filename", filename: ""},
		{name: "path in filename", filename: "../clip.mp4"},
		{
			name:     "downloads dir is a file",
			filename: "clip.mp4",
			prepare: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				if err := os.WriteFile(cfg.Dir.Downloads, []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stg, cfg, _ := newTestStorage(t)
			if tt.prepare != nil {
				tt.prepare(t, cfg)
			}

			blob := writeBlob(t, cfg.Dir.Temp, "video")

			_, err := stg.Save(t.Context(), blob, tt.filename)
			if !errors.Is(err, errs.ErrSaveFailed) {
				t.Fatalf("Save() error = %v, want %v", err, errs.ErrSaveFailed)
			}

			if !blob.Released() {
				t.Error("blob not released after failed Save")
			}

			if _, err := os.Stat(blob.Path); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("temp blob still on disk: %v", err)
			}
		})
	}
}

func TestAttemptHistory(t *testing.T) {
	stg, _, _ := newTestStorage(t)
	ctx := t.Context()

	stg.SetAttempt(ctx, entity.Attempt{})

	if got := stg.GetAttempts(ctx); len(got) != 0 {
		t.Fatalf("attempt without id stored: %v", got)
	}

	stg.SetAttempt(ctx, entity.Attempt{ID: "a", Strategy: entity.StrategyNone})
	stg.SetAttempt(ctx, entity.Attempt{ID: "b", Strategy: entity.StrategyFallback})
	stg.SetAttempt(ctx, entity.Attempt{ID: "a", Strategy: entity.StrategyPrimary})

	got := stg.GetAttempts(ctx)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("GetAttempts() = %v, want [a b]", got)
	}

	if got[0].Strategy != entity.StrategyPrimary {
		t.Errorf("attempt a = %+v, want updated primary attempt", got[0])
	}

	got[0].ID = "mutated"
	if again := stg.GetAttempts(ctx); again[0].ID != "a" {
		t.Error("GetAttempts() returned internal slice")
	}
}

func TestPerformCleanup(t *testing.T) {
	stg, cfg, metrics := newTestStorage(t)

	stale := writeBlob(t, cfg.Dir.Temp, "old")
	fresh := writeBlob(t, cfg.Dir.Temp, "new")

	other := filepath.Join(cfg.Dir.Temp, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-2 * time.Hour)
	for _, path := range []string{stale.Path, other} {
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
	}

	if n := stg.performCleanup(t.Context(), time.Now()); n != 1 {
		t.Errorf("performCleanup() = %d, want 1", n)
	}

	if _, err := os.Stat(stale.Path); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale blob survived cleanup")
	}

	for _, path := range []string{fresh.Path, other} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s removed by cleanup: %v", filepath.Base(path), err)
		}
	}

	if got := testutil.ToFloat64(metrics.CleanupFilesTotal); got != 1 {
		t.Errorf("cleanup metric = %v, want 1", got)
	}
}

func TestPerformCleanupMissingDir(t *testing.T) {
	stg, cfg, _ := newTestStorage(t)
	cfg.Dir.Temp = filepath.Join(cfg.Dir.Temp, "absent")

	if n := stg.performCleanup(t.Context(), time.Now()); n != 0 {
		t.Errorf("performCleanup() = %d, want 0", n)
	}
}
