package cmd

import (
	"fmt"
	"os"

	"map-atlas/core/config"
	"map-atlas/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "map-atlas",
	Short: "Map Atlas Service",
	Long: `Map Atlas reads the map data of a game install and its mods, indexes
provinces, states, strategic regions and countries, and renders thematic maps.
It can serve the result over HTTP or export it to S3 storage and MySQL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the debug config gives ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// setup loads the configuration from the working directory and builds the
// logger every command uses.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// logReporter prints build stages through the logger.
type logReporter struct {
	logger *zap.Logger
}

func (r logReporter) Stage(name string) {
	r.logger.Info("Stage", zap.String("stage", name))
}

func (r logReporter) Report(int) {}
