package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/habiliai/answerdesk/internal/httpserver"
	"github.com/spf13/cobra"
)

func newServeCmd(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the keep-alive HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			desk, serverConf, logger, err := buildDesk(cmd, params)
			if err != nil {
				return err
			}

			// Warm the cache so the first question does not pay for the
			// initial load. Missing sources are non-fatal here.
			if stats, err := desk.Stats(ctx); err != nil {
				logger.Warn("knowledge base not loadable at startup", "error", err)
			} else {
				logger.Info("knowledge base ready",
					"questions", stats.TotalQuestions,
					"categories", stats.Categories)
			}

			server := httpserver.New(serverConf, desk.Store(), logger)
			return server.Run(ctx)
		},
	}
}
