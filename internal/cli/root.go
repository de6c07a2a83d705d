package cli

import (
	"log/slog"
	"os"
	"strings"

	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/logging"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "vocab-quiz",
		Short:        "Vocabulary quiz service: four-choice translation drills with periodic review",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewImportCmd(&configPath))
	return cmd
}

// setupLogger builds the logger from config and installs it as the default.
// APP_ENV=dev forces the human-readable handler.
func setupLogger(cfg config.Config) *slog.Logger {
	format := cfg.Log.Format
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		format = "text"
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, format)
	slog.SetDefault(logger)
	return logger
}
