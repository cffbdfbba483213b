package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/config"
	"github.com/vytor/studyflash/internal/logger"
)

func main() {
	var debugMode bool
	rootCommand := &cobra.Command{
		Use:           "studyflash",
		Short:         "Flashcard study backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), loadConfig(debugMode))
		},
	}
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(
		newServeCommand(&debugMode),
		newDemoSessionCommand(&debugMode),
	)
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "studyflash: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the default logger.
func loadConfig(debugMode bool) config.Config {
	cfg := config.Load()
	if debugMode {
		cfg.LogLevel = "DEBUG"
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(logger.ParseFormat(cfg.LogFormat) == logger.FormatText),
	)
	logger.SetDefault(log)
	return cfg
}
