package cmd

import (
	"soundwave/events"
	"soundwave/logger"
	"soundwave/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 SoundWave API 服务器",
	Long:  `启动歌曲 REST API (GET/POST /api/songs, GET/PATCH/DELETE /api/songs/{id})。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func runServer(cmd *cobra.Command) error {
	ctx := cmd.Context()
	repo, closeStore, err := openSongStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	h := server.NewAPIHandler(repo, events.New(cfg.KafkaBrokers, cfg.KafkaTopic))
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warn("Failed to close event publisher", logger.ErrorField(err))
		}
	}()

	return server.Run(ctx, cfg, h)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
