// The agent is the capture-side companion to the ingestion service: it
// captures pages on demand and keeps the mirrored session credential in
// sync with the web application.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/config"
	pkgconfig "github.com/RodolfoMedinaCS/LinkLensV4/pkg/config"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "LinkLens capture agent",
	Long:  "Captures web pages into LinkLens and mirrors the web application's session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(newCaptureCmd())
	rootCmd.AddCommand(newRunCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the agent configuration. The agent shares the service
// config file but only needs the redis, capture and logging sections, so
// service-side validation is skipped.
func loadConfig() (*config.Config, error) {
	path := pkgconfig.GetConfigPath(config.DefaultPath)
	cfg, err := pkgconfig.LoadWithDefaults(path, (*config.Config).SetDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// createLogger builds the agent logger.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", "linklens-agent")), nil
}
