// Package main is the entry point for the tgbot CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/flemzord/tgbot/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand that reads the configuration.
type globalFlags struct {
	config  string
	envFile string
}

func rootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           "tgbot",
		Short:         "A Telegram bot with polling and webhook delivery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Dotenv file loaded before the configuration")

	root.AddCommand(
		versionCmd(),
		runCmd(&flags),
		initCmd(),
		configCmd(&flags),
		getMeCmd(&flags),
		sendCmd(&flags),
		webhookCmd(&flags),
		serviceCmd(&flags),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tgbot %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func runCmd(flags *globalFlags) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot with the configured delivery mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := runParams(flags, level)
			if err != nil {
				return err
			}
			return app.Run(commandContext(cmd), params)
		},
	}
	cmd.Flags().StringVar(&level, "log-level", "", "Override log level (debug, info, warn, error)")
	return cmd
}

// runParams builds the app parameters from command-line flags.
func runParams(flags *globalFlags, level string) (app.RunParams, error) {
	params := app.RunParams{
		ConfigPath: flags.config,
		EnvFile:    flags.envFile,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
	if level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return params, fmt.Errorf("invalid --log-level %q: %w", level, err)
		}
		params.LogLevel = &l
	}
	return params, nil
}

// commandContext returns cmd's context, falling back to Background when the
// command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
