package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trainvoc-room-service/internal/config"
	"trainvoc-room-service/internal/logging"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// .env must be loaded before flag defaults read the environment
	envErr := godotenv.Load()
	cmd := newRootCmd()
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(configPath)
		if envErr != nil && !os.IsNotExist(envErr) {
			log.Warn().Err(envErr).Msg("could not load .env file")
		}
	}
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "trainvoc-rooms",
		Short:        "Multiplayer vocabulary quiz rooms kept in sync by client polling",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewWatchCmd())
	return cmd
}

// setupLogging applies the log section of the config, or console info logging
// when the config cannot be read.
func setupLogging(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		logging.Setup("info", true)
		log.Debug().Err(err).Str("config", path).Msg("config not loaded for logging")
		return
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
}
