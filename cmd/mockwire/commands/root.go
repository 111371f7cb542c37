package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yshengliao/mockwire/internal/logger"
)

var (
	logLevel string
	logFile  string
)

// Execute runs the mockwire CLI.
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:   "mockwire",
		Short: "Mockwire - request interception and mock resolution toolkit",
		Long: `Mockwire intercepts outgoing HTTP requests and resolves them against
registered handlers: mock, passthrough, or error.

This CLI works with declarative handler definition files: validate them
and dry-run requests against them without performing any network I/O.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, with rotation")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newMatchCmd())

	return rootCmd.Execute()
}

// newLogger builds the CLI logger from the persistent flags.
func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Options{Level: logLevel, File: logFile})
}
