package cmd

import (
	"fmt"
	"os"

	"soundwave/config"
	"soundwave/logger"

	"github.com/spf13/cobra"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "soundwave",
	Short: "SoundWave music catalog API and tools.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
		}); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		logger.Debug("Configuration loaded", logger.String("config", cfg.String()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	// 默认启动服务器
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
