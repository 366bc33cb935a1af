// Package cli wires configuration, logging and the download orchestrator into
// the mediashare command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"mediashare/internal/browser"
	"mediashare/internal/config"
	"mediashare/internal/downloader"
	"mediashare/internal/observability"
	"mediashare/internal/proxy"
	"mediashare/internal/service"
	"mediashare/internal/storage"
	"mediashare/internal/tui"
	"mediashare/pkg/logger"

	"github.com/spf13/cobra"
)

// options are persistent flags overriding environment configuration.
type options struct {
	url          string
	logLevel     string
	downloadsDir string
}

type app struct {
	cfg *config.Config
	log *slog.Logger
	svc service.Orchestrator
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)

		return 1
	}

	return 0
}

// NewRootCmd builds the command tree. Without a subcommand it shows the terminal landing.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "mediashare",
		Short:         "Watch and download a shared video",
		Long:          "Shows a video landing in the terminal or over HTTP and downloads the video with a browser fallback.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLanding(cmd, opts)
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&opts.url, "url", "", "video URL (overrides MEDIASHARE_LANDING_VIDEO_URL)")
	pflags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pflags.StringVar(&opts.downloadsDir, "downloads-dir", "", "directory saved videos are written to")

	cmd.AddCommand(newServeCmd(opts), newDownloadCmd(opts))
	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("config new: %w", err)
	}

	if opts.url != "" {
		cfg.Landing.VideoURL = opts.url
	}

	if opts.logLevel != "" {
		cfg.App.LogLevel = opts.logLevel
	}

	if opts.downloadsDir != "" {
		cfg.Dir.Downloads = opts.downloadsDir
	}

	err = cfg.Refresh()
	if err != nil {
		return nil, fmt.Errorf("config refresh: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
		Output:    out,
	})
	if err != nil {
		log.Warn("logger level invalid; defaulting to info", slog.Any("error", err))
	}

	return log
}

// newApp builds the orchestrator and its strategies.
func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	metrics := observability.New()

	proxies, err := proxy.New(cfg.Fetch.Proxies, cfg.Fetch.ProxyHealthCheck, cfg.Fetch.ProxyHealthTimeout)
	if err != nil {
		return nil, fmt.Errorf("proxy new: %w", err)
	}

	if proxies.Count() > 0 {
		log.Info("proxy manager initialized", slog.Int("proxy_count", proxies.Count()))
	}

	fetcher := downloader.NewHTTP(log, cfg, proxies)
	storer := storage.New(log, cfg, metrics)
	opener := browser.New(log)

	return &app{
		cfg: cfg,
		log: log,
		svc: service.New(cfg, log, fetcher, storer, opener, metrics),
	}, nil
}

// runLanding shows the terminal landing. stdout belongs to the UI, so logs go
// to App.LogFile or nowhere.
func runLanding(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := logger.Discard()

	if cfg.App.LogFile != "" {
		f, err := openLogFile(cfg.App.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()

		log = newLogger(cfg, f)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	a.svc.Start(ctx)

	log.InfoContext(ctx, "terminal landing started", slog.String("video_url", cfg.Landing.VideoURL))

	return tui.Run(ctx, a.svc)
}

func openLogFile(path string) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}
