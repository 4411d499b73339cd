// Package cli provides the sheetbot command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the root command. Without a subcommand it runs serve.
func NewRootCmd() *cobra.Command {
	var envFile string

	serve := NewServeCommand()

	rootCmd := &cobra.Command{
		Use:   "sheetbot",
		Short: "Telegram bot that searches a Google Sheet",
		Long: `sheetbot answers Telegram messages by searching the rows of a Google
Sheet (or a local CSV file) for the text it receives.

Configuration comes from environment variables, optionally loaded from a
.env file. Run "sheetbot check" to verify a setup.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			loadEnvFile(envFile)
			return nil
		},
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load if present")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(NewAskCommand())
	rootCmd.AddCommand(NewSummaryCommand())
	rootCmd.AddCommand(NewAuthCommand())
	rootCmd.AddCommand(NewCheckCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadEnvFile loads path into the environment, overwriting existing values.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		slog.Debug("no env file loaded, using environment variables", "path", path)
		return
	}
	slog.Debug("loaded env file (overwriting existing env vars)", "path", path)
}
