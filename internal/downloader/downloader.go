// Package downloader implements the primary download strategy: retrieving a
// resource into a temporary local blob.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"

	"mediashare/internal/errs"
)

// Fetcher retrieves a resource's binary content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Blob, error)
}

// Blob is fetched content held in a temporary file until it is released.
type Blob struct {
	Path     string
	Size     int64
	MimeType string

	released atomic.Bool
}

// Release removes the temporary file. It is safe to call more than once and
// after the file has been moved away.
func (b *Blob) Release() error {
	if !b.released.CompareAndSwap(false, true) {
		return nil
	}

	err := os.Remove(b.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release blob: %w", err)
	}

	return nil
}

// Released reports whether Release has been called.
func (b *Blob) Released() bool {
	return b.released.Load()
}

// ClassifyError returns a short metric label for a primary strategy failure.
func ClassifyError(err error) string {
	var netErr net.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, errs.ErrSaveFailed):
		return "save"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, errs.ErrNoProxiesAvailable):
		return "proxy"
	default:
		return "network"
	}
}
