// Package browser implements the fallback download strategy: handing the
// resource URL to the system browser in a new browsing context.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"mediashare/internal/errs"
	"mediashare/pkg/urls"
)

// Opener opens a URL outside the application.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Runner starts a detached command. The default runner uses os/exec.
type Runner func(ctx context.Context, name string, args ...string) error

type system struct {
	log  *slog.Logger
	goos string
	run  Runner
}

// New returns an Opener using the platform's default URL handler.
func New(log *slog.Logger) Opener {
	return NewWithRunner(log, runtime.GOOS, startDetached)
}

// NewWithRunner returns an Opener for goos that launches commands through run.
func NewWithRunner(log *slog.Logger, goos string, run Runner) Opener {
	return &system{
		log:  log.With(slog.String("package", "browser")),
		goos: goos,
		run:  run,
	}
}

func (s *system) Open(ctx context.Context, url string) error {
	if !urls.IsURLValid(url) {
		return fmt.Errorf("%w: %w: %q", errs.ErrFallbackFailed, errs.ErrInvalidURL, url)
	}

	name, args, err := Command(s.goos, url)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrFallbackFailed, err)
	}

	err = s.run(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrFallbackFailed, name, err)
	}

	s.log.DebugContext(ctx, "url handed to browser", slog.String("url", url), slog.String("command", name))

	return nil
}

// Command returns the launcher invocation that opens url on goos.
func Command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedPlatform, goos)
	}
}

// startDetached starts the launcher without waiting for the browser to exit.
func startDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec,noctx // launcher outlives the request

	err := cmd.Start()
	if err != nil {
		return err
	}

	go cmd.Wait() //nolint:errcheck

	return nil
}
