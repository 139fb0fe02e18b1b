// Package main provides the CLI entrypoint for the contact list verifier.
// It wires subcommands (serve, verify), loads configuration, and initializes logging.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"verifier/internal/config"
	"verifier/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yml"

// loadConfig reads the config file at path. A missing default config file is
// not an error: defaults and environment variables are used instead.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		return config.Default() //nolint: wrapcheck
	}

	return config.Load(path) //nolint: wrapcheck
}

// main sets up the root Cobra command and registers subcommands. The config
// and the logger are initialized once flags are parsed, before any
// subcommand runs.
func main() {
	// filled in by PersistentPreRunE, read by the subcommands when they run
	cfg := &config.Config{}

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "verifier",
		Short:         "Classifies the email addresses of contact lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("could not load config file: %w", err)
			}
			*cfg = *loaded

			if err = logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
				return fmt.Errorf("could not setup logger: %w", err)
			}

			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Config File Path")

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync(ctx)

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		verifyCommand(cfg),
	)

	err := rootCmd.Execute()
	if err != nil {
		logger.Error(ctx, "command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	logger.Sync(ctx)
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
