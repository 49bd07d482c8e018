package cmd

import (
	"log/slog"
	"os"

	"github.com/habiliai/answerdesk"
	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/internal/mylog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootParams struct {
	deskFile string
}

func NewRootCmd() *cobra.Command {
	params := &rootParams{}

	cmd := &cobra.Command{
		Use:          "answerdesk",
		Short:        "Knowledge base question answering desk",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&params.deskFile, "desk-file", "f", "", "optional YAML desk file")

	cmd.AddCommand(
		newServeCmd(params),
		newQueryCmd(params),
		newStatsCmd(params),
		newRefreshCmd(params),
	)

	return cmd
}

// buildDesk resolves configuration (defaults, optional desk file, then
// environment) and constructs the desk.
func buildDesk(cmd *cobra.Command, params *rootParams) (*answerdesk.AnswerDesk, *config.ServerConfig, *slog.Logger, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	deskConf := &config.DeskConfig{
		Knowledge: *config.NewKnowledgeConfig(),
		Fallback:  *config.NewFallbackConfig(),
		Log:       *config.NewLogConfig(),
		Server:    *config.NewServerConfig(),
	}
	if params.deskFile != "" {
		loaded, err := config.LoadDeskFile(params.deskFile)
		if err != nil {
			return nil, nil, nil, err
		}
		deskConf = loaded
	}

	// Environment always wins over file values.
	if err := config.ResolveConfig(&deskConf.Knowledge, false); err != nil {
		return nil, nil, nil, err
	}
	if err := config.ResolveConfig(&deskConf.Fallback, false); err != nil {
		return nil, nil, nil, err
	}
	if err := config.ResolveConfig(&deskConf.Log, false); err != nil {
		return nil, nil, nil, err
	}
	if err := config.ResolveConfig(&deskConf.Server, false); err != nil {
		return nil, nil, nil, err
	}

	logger := mylog.NewLogger(deskConf.Log.LogLevel, deskConf.Log.LogHandler)

	desk, err := answerdesk.New(
		cmd.Context(),
		answerdesk.WithLogger(logger),
		answerdesk.WithKnowledgeConfig(&deskConf.Knowledge),
		answerdesk.WithFallbackConfig(&deskConf.Fallback),
		answerdesk.WithLogConfig(&deskConf.Log),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	return desk, &deskConf.Server, logger, nil
}
