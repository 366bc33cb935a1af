// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
	"time"
)

// Phase is the landing's download phase.
type Phase string

const (
	// PhaseIdle means no attempt has run yet.
	PhaseIdle Phase = "idle"
	// PhaseDownloading means an attempt is in flight.
	PhaseDownloading Phase = "downloading"
	// PhaseFinished means the last attempt concluded, successfully or not.
	PhaseFinished Phase = "finished"
)

// Strategy names the way an attempt delivered the video.
type Strategy string

const (
	// StrategyNone means no strategy succeeded.
	StrategyNone Strategy = "none"
	// StrategyPrimary means the resource was fetched and saved locally.
	StrategyPrimary Strategy = "primary"
	// StrategyFallback means the resource URL was opened in a browser.
	StrategyFallback Strategy = "fallback"
)

// Attempt records one download attempt.
type Attempt struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	Strategy   Strategy  `json:"strategy"`
	SavedPath  string    `json:"savedPath,omitempty"`
	Bytes      int64     `json:"bytes,omitempty"`
	MimeType   string    `json:"mimeType,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Duration returns how long the attempt took.
func (a Attempt) Duration() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}

	return a.FinishedAt.Sub(a.StartedAt)
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (a Attempt) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("url", a.URL),
		slog.String("filename", a.Filename),
		slog.String("strategy", string(a.Strategy)),
		slog.String("saved_path", a.SavedPath),
		slog.Int64("bytes", a.Bytes),
		slog.String("mime_type", a.MimeType),
		slog.Duration("duration", a.Duration()),
	)
}

// State is the transient view state of a landing.
type State struct {
	Busy         bool     `json:"busy"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Phase        Phase    `json:"phase"`
	Last         *Attempt `json:"last,omitempty"`
}

// Landing describes what a landing surface displays.
type Landing struct {
	VideoURL       string `json:"videoUrl"`
	Filename       string `json:"filename"`
	AffiliateURL   string `json:"affiliateUrl"`
	AffiliateLabel string `json:"affiliateLabel"`
}
