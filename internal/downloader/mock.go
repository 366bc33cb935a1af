package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"mediashare/internal/consts"
	"mediashare/internal/errs"
)

// Mock is a Fetcher that serves fixed content or a fixed error.
type Mock struct {
	log     *slog.Logger
	tempDir string
	content []byte
	err     error

	// OnFetch runs at the start of every Fetch, before the result is produced.
	OnFetch func(ctx context.Context, url string)

	calls atomic.Int32
	blobs []*Blob
}

// NewMock returns a Mock writing content into tempDir, or failing with err when err is set.
func NewMock(log *slog.Logger, tempDir string, content []byte, err error) *Mock {
	return &Mock{
		log:     log.With(slog.String("package", "downloader"), slog.String("fetcher", "mock")),
		tempDir: tempDir,
		content: content,
		err:     err,
	}
}

func (m *Mock) Fetch(ctx context.Context, url string) (*Blob, error) {
	m.calls.Add(1)

	if m.OnFetch != nil {
		m.OnFetch(ctx, url)
	}

	if m.err != nil {
		m.log.DebugContext(ctx, "mock fetch failed", slog.String("url", url), slog.Any("error", m.err))

		return nil, fmt.Errorf("%w: %w", errs.ErrRetrievalFailed, m.err)
	}

	file, err := os.CreateTemp(m.tempDir, consts.TempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRetrievalFailed, err)
	}
	defer file.Close()

	n, err := file.Write(m.content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRetrievalFailed, err)
	}

	blob := &Blob{Path: file.Name(), Size: int64(n), MimeType: "video/mp4"}
	m.blobs = append(m.blobs, blob)

	return blob, nil
}

// Calls returns how many times Fetch ran.
func (m *Mock) Calls() int {
	return int(m.calls.Load())
}

// Blobs returns the blobs handed out so far.
func (m *Mock) Blobs() []*Blob {
	return m.blobs
}
