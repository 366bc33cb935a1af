// Package service implements the download orchestrator: one download attempt
// per user action, primary strategy first, browser fallback second.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mediashare/internal/browser"
	"mediashare/internal/config"
	"mediashare/internal/consts"
	"mediashare/internal/downloader"
	"mediashare/internal/entity"
	"mediashare/internal/errs"
	"mediashare/internal/observability"
	"mediashare/internal/storage"
	"mediashare/pkg/urls"

	"github.com/google/uuid"
)

// LandingSource describes the landing page.
type LandingSource interface {
	Landing() entity.Landing
}

type staticLanding entity.Landing

func (l staticLanding) Landing() entity.Landing { return entity.Landing(l) }

// NewLandingSource describes the landing from configuration alone, for surfaces
// that never run download attempts.
func NewLandingSource(cfg *config.Config) LandingSource {
	return staticLanding(landingFromConfig(cfg))
}

// Orchestrator drives download attempts and owns the landing's view state.
type Orchestrator interface {
	LandingSource

	// Start launches background housekeeping until ctx is done.
	Start(ctx context.Context)

	// AttemptDownload runs one download attempt for resourceURL. It returns
	// errs.ErrAttemptInFlight without touching state when an attempt is running,
	// and an error wrapping errs.ErrFallbackFailed when both strategies failed.
	AttemptDownload(ctx context.Context, resourceURL string) (entity.Attempt, error)

	// Watch opens the video in the system browser.
	Watch(ctx context.Context) error
	// OpenAffiliate opens the affiliate link in the system browser.
	OpenAffiliate(ctx context.Context) error

	State() entity.State
	// Attempts returns the attempt history, oldest first.
	Attempts(ctx context.Context) []entity.Attempt
}

type orchestrator struct {
	log     *slog.Logger
	cfg     *config.Config
	fetcher downloader.Fetcher
	storer  storage.Storer
	opener  browser.Opener
	metrics *observability.Metrics

	mu    sync.RWMutex
	state entity.State

	startOnce sync.Once
}

var _ Orchestrator = (*orchestrator)(nil)

// New creates an orchestrator with idle state.
func New(
	cfg *config.Config,
	log *slog.Logger,
	fetcher downloader.Fetcher,
	storer storage.Storer,
	opener browser.Opener,
	metrics *observability.Metrics,
) Orchestrator {
	return &orchestrator{
		log:     log.With(slog.String("package", "service")),
		cfg:     cfg,
		fetcher: fetcher,
		storer:  storer,
		opener:  opener,
		metrics: metrics,
		state:   entity.State{Phase: entity.PhaseIdle},
	}
}

func (svc *orchestrator) Start(ctx context.Context) {
	svc.startOnce.Do(func() {
		go svc.storer.CleanupStaleBlobs(ctx, svc.cfg.Storage.CleanupInterval)
	})
}

func (svc *orchestrator) AttemptDownload(ctx context.Context, resourceURL string) (entity.Attempt, error) {
	if !svc.begin() {
		svc.metrics.RecordAttemptRejected()
		svc.log.WarnContext(ctx, "download attempt rejected", slog.String("url", resourceURL))

		return entity.Attempt{}, errs.ErrAttemptInFlight
	}

	// once started, an attempt runs to completion
	ctx = context.WithoutCancel(ctx)

	resourceURL = urls.Normalize(resourceURL)

	attempt := entity.Attempt{
		ID:        uuid.NewString(),
		URL:       resourceURL,
		Filename:  urls.Filename(resourceURL, consts.DefaultFilename),
		Strategy:  entity.StrategyNone,
		StartedAt: time.Now(),
	}

	log := svc.log.With(slog.String("func", "AttemptDownload"), slog.String("attempt_id", attempt.ID))

	svc.metrics.RecordAttemptStarted()
	svc.storer.SetAttempt(ctx, attempt)

	// failed stays true when a strategy panics; the state is restored and the panic propagates.
	failed := true

	defer func() {
		if attempt.FinishedAt.IsZero() {
			attempt.FinishedAt = time.Now()
			attempt.Error = "download attempt aborted"
		}

		svc.storer.SetAttempt(ctx, attempt)
		svc.metrics.RecordAttemptFinished(string(attempt.Strategy), attempt.Duration(), attempt.Bytes)
		svc.finish(attempt, failed)
	}()

	terminal := svc.run(ctx, log, &attempt)

	attempt.FinishedAt = time.Now()
	failed = terminal != nil

	if terminal != nil {
		attempt.Error = terminal.Error()

		log.ErrorContext(ctx, "download attempt failed", slog.Any("attempt", attempt), slog.Any("error", terminal))

		return attempt, terminal
	}

	log.InfoContext(ctx, "download attempt finished", slog.Any("attempt", attempt))

	return attempt, nil
}

// run tries the primary strategy, then the fallback. It returns an error only
// when both failed.
func (svc *orchestrator) run(ctx context.Context, log *slog.Logger, attempt *entity.Attempt) error {
	err := svc.primary(ctx, attempt)
	if err == nil {
		attempt.Strategy = entity.StrategyPrimary

		return nil
	}

	log.WarnContext(ctx, "primary strategy failed, falling back to browser", slog.Any("error", err))
	svc.metrics.RecordStrategyFailure(string(entity.StrategyPrimary), downloader.ClassifyError(err))

	err = svc.fallback(ctx, attempt)
	if err != nil {
		svc.metrics.RecordStrategyFailure(string(entity.StrategyFallback), fallbackReason(err))

		return fmt.Errorf("download %q: %w", attempt.URL, err)
	}

	attempt.Strategy = entity.StrategyFallback

	return nil
}

// primary fetches the resource into a temporary blob and saves it locally.
func (svc *orchestrator) primary(ctx context.Context, attempt *entity.Attempt) error {
	blob, err := svc.fetcher.Fetch(ctx, attempt.URL)
	if err != nil {
		return err
	}
	defer blob.Release() //nolint:errcheck // Save releases and logs

	attempt.Bytes = blob.Size
	attempt.MimeType = blob.MimeType

	path, err := svc.storer.Save(ctx, blob, attempt.Filename)
	if err != nil {
		return err
	}

	attempt.SavedPath = path

	return nil
}

// fallback hands the resource URL to the system browser.
func (svc *orchestrator) fallback(ctx context.Context, attempt *entity.Attempt) error {
	svc.log.DebugContext(ctx, "opening resource in browser",
		slog.String("url", attempt.URL), slog.String("filename", attempt.Filename))

	return svc.opener.Open(ctx, attempt.URL)
}

// begin flips the view into the downloading phase unless an attempt is already in flight.
func (svc *orchestrator) begin() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.state.Busy {
		return false
	}

	svc.state.Busy = true
	svc.state.ErrorMessage = ""
	svc.state.Phase = entity.PhaseDownloading

	return true
}

func (svc *orchestrator) finish(attempt entity.Attempt, failed bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if failed {
		svc.state.ErrorMessage = consts.MsgManualSave
	}

	svc.state.Busy = false
	svc.state.Phase = entity.PhaseFinished
	svc.state.Last = &attempt
}

func (svc *orchestrator) Watch(ctx context.Context) error {
	return svc.open(ctx, "watch", svc.cfg.Landing.VideoURL)
}

func (svc *orchestrator) OpenAffiliate(ctx context.Context) error {
	return svc.open(ctx, "affiliate", svc.cfg.Landing.AffiliateURL)
}

func (svc *orchestrator) open(ctx context.Context, action, target string) error {
	err := svc.opener.Open(ctx, target)
	if err != nil {
		svc.log.WarnContext(ctx, "open link", slog.String("action", action), slog.String("url", target), slog.Any("error", err))

		return fmt.Errorf("%s: %w", action, err)
	}

	return nil
}

// State returns a copy of the current view state.
func (svc *orchestrator) State() entity.State {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	state := svc.state
	if state.Last != nil {
		last := *state.Last
		state.Last = &last
	}

	return state
}

func (svc *orchestrator) Landing() entity.Landing {
	return landingFromConfig(svc.cfg)
}

func landingFromConfig(cfg *config.Config) entity.Landing {
	label := cfg.Landing.AffiliateLabel
	if label == "" {
		label = consts.TextAffiliateDef
	}

	return entity.Landing{
		VideoURL:       cfg.Landing.VideoURL,
		Filename:       urls.Filename(cfg.Landing.VideoURL, consts.DefaultFilename),
		AffiliateURL:   cfg.Landing.AffiliateURL,
		AffiliateLabel: label,
	}
}

func (svc *orchestrator) Attempts(ctx context.Context) []entity.Attempt {
	return svc.storer.GetAttempts(ctx)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errs.ErrUnsupportedPlatform):
		return "unsupported_platform"
	case errors.Is(err, errs.ErrInvalidURL):
		return "invalid_url"
	default:
		return "launch"
	}
}
