// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	ErrMissingSubcommand = errors.New("must specify a subcommand")

	logLevel string

	rootCmd = &cobra.Command{
		Use:        "bigmarket-cli",
		Short:      "Settlement scenario runner and read-model server",
		SuggestFor: []string{"bigmarket-cli", "bigmarketcli"},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// A .env file is optional.
			_ = godotenv.Load()
			if v := os.Getenv("BIGMARKET_LOG_LEVEL"); v != "" && logLevel == "" {
				logLevel = v
			}
			return nil
		},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides BIGMARKET_LOG_LEVEL, default info)")
	rootCmd.AddCommand(
		runCmd,
		serveCmd,
		gatingCmd,
		addressCmd,
	)
}

func Execute() error {
	return rootCmd.Execute()
}

func newLogger() (logging.Logger, error) {
	level := logging.Info
	if logLevel != "" {
		var err error
		level, err = logging.ToLevel(strings.ToUpper(logLevel))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
	}
	return logging.NewLogger(
		"bigmarket-cli",
		logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder()),
	), nil
}
