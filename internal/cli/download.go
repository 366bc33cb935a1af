package cli

import (
	"fmt"

	"mediashare/internal/consts"
	"mediashare/internal/entity"

	"github.com/spf13/cobra"
)

func newDownloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "download [url]",
		Short: "Download the video once, falling back to the browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.url = args[0]
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			// stdout carries the result line
			log := newLogger(cfg, cmd.ErrOrStderr())

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}

			attempt, err := a.svc.AttemptDownload(cmd.Context(), cfg.Landing.VideoURL)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), consts.MsgManualSave)

				return err
			}

			out := cmd.OutOrStdout()

			switch attempt.Strategy {
			case entity.StrategyPrimary:
				fmt.Fprintln(out, consts.TextSaved, attempt.SavedPath)
			case entity.StrategyFallback:
				fmt.Fprintln(out, consts.TextOpened)
			}

			return nil
		},
	}
}
