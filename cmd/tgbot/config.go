package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/flemzord/tgbot/internal/config"
	"github.com/flemzord/tgbot/pkg/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var show bool
	check := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.config
			if len(args) == 1 {
				path = args[0]
			}
			cfg, used, err := app.LoadConfig(path, flags.envFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (mode: %s, %d scheduled jobs)\n",
				color.GreenString("Configuration OK:"), used, cfg.Telegram.Mode, len(cfg.Schedule))
			if show {
				return printRedacted(out, cfg)
			}
			return nil
		},
	}
	check.Flags().BoolVar(&show, "show", false, "Print the effective configuration with secrets redacted")

	cmd.AddCommand(check)
	return cmd
}

// printRedacted writes cfg as YAML with every secret replaced.
func printRedacted(w io.Writer, cfg *config.Config) error {
	raw, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("config: re-reading effective config: %w", err)
	}
	app.NewRedactor(cfg).RedactMap(tree)

	out, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("config: encoding effective config: %w", err)
	}
	_, err = w.Write(out)
	return err
}
