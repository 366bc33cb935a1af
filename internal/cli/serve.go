package cli

import (
	"fmt"
	"log/slog"

	httprouter "mediashare/internal/infrastructure/delivery/http"
	"mediashare/internal/observability"
	"mediashare/internal/service"
	httpserver "mediashare/pkg/http/server"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if port != "" {
				cfg.HTTP.Port = port
			}

			log := newLogger(cfg, cmd.OutOrStdout())

			// visitors' browsers download the video; the server needs no strategies
			metrics := observability.New()
			router := httprouter.New(log, cfg, service.NewLandingSource(cfg), metrics)

			httpSrv := httpserver.New(router, httpserver.Options{
				Addr:            cfg.HTTP.Port,
				ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			})

			log.InfoContext(ctx, "mediashare started", slog.String("port", cfg.HTTP.Port))

			select {
			case <-ctx.Done():
			case err = <-httpSrv.Notify():
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}

			err = httpSrv.Shutdown()
			if err != nil {
				log.ErrorContext(ctx, "http server shutdown", slog.Any("error", err))
			}

			log.InfoContext(ctx, "mediashare shut down gracefully")

			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen address (overrides MEDIASHARE_HTTP_PORT)")

	return cmd
}
