package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"animmuf/internal/history"
	"animmuf/internal/logging"
	"animmuf/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var noVideo bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one fetch/sync/render pass",
		Long: "Fetches the remote manifest (conditionally), downloads missing images, " +
			"expires stale ones, composites the retained set into frames, and renders " +
			"the animation. Exits cleanly with nothing to do when the upstream is unchanged.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// Bind to SIGINT/SIGTERM so deferred cleanup (scratch workspace,
			// run lock) executes on interrupt.
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			hist, err := history.Open(cfg.Paths.StateDir)
			if err != nil {
				logger.Warn("run history unavailable", logging.Error(err))
				hist = nil
			} else {
				defer hist.Close()
			}

			runner, err := pipeline.New(cfg, logger, hist)
			if err != nil {
				return err
			}
			return runner.Run(signalCtx, pipeline.Options{
				Force:      force,
				SkipRender: noVideo,
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Render even when the manifest is unchanged")
	cmd.Flags().BoolVar(&noVideo, "no-video", false, "Stop after syncing and expiring images")

	return cmd
}
