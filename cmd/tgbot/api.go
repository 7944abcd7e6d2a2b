package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/flemzord/tgbot/internal/config"
	"github.com/flemzord/tgbot/pkg/app"
	"github.com/flemzord/tgbot/pkg/telegram"
	"github.com/spf13/cobra"
)

// apiTimeout bounds one-shot API calls made from the command line.
const apiTimeout = 30 * time.Second

// loadClient loads the configuration and builds an API client from it.
func loadClient(flags *globalFlags) (*telegram.Client, *config.Config, error) {
	cfg, _, err := app.LoadConfig(flags.config, flags.envFile)
	if err != nil {
		return nil, nil, err
	}
	var opts []telegram.Option
	if cfg.Telegram.APIURL != "" {
		opts = append(opts, telegram.WithBaseURL(cfg.Telegram.APIURL))
	}
	client, err := telegram.NewClient(cfg.Telegram.Token, opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func getMeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "getme",
		Short: "Check the token by fetching the bot's own user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := loadClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), apiTimeout)
			defer cancel()

			me, err := client.GetMe(ctx)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), me)
			return nil
		},
	}
}

func printUser(w io.Writer, u *telegram.User) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(w, "%s", u.FirstName)
	if u.Username != "" {
		fmt.Fprintf(w, " (@%s)", u.Username)
	}
	fmt.Fprintf(w, "\n  id:     %d\n  is_bot: %t\n", u.ID, u.IsBot)
}

func sendCmd(flags *globalFlags) *cobra.Command {
	var parseMode string
	cmd := &cobra.Command{
		Use:   "send <chat_id> <text>...",
		Short: "Send a text message to a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q: %w", args[0], err)
			}
			client, _, err := loadClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), apiTimeout)
			defer cancel()

			msg, err := client.SendMessage(ctx, telegram.SendMessageRequest{
				ChatID:    chatID,
				Text:      strings.Join(args[1:], " "),
				ParseMode: parseMode,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s message %d to chat %d\n", color.GreenString("Sent"), msg.MessageID, chatID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parseMode, "parse-mode", "", "Markdown, MarkdownV2 or HTML")
	return cmd
}

func webhookCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the webhook registration",
	}

	var secret string
	set := &cobra.Command{
		Use:   "set [url]",
		Short: "Register a webhook (defaults to telegram.webhook_url)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(flags)
			if err != nil {
				return err
			}
			url := cfg.Telegram.WebhookURL
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" {
				return fmt.Errorf("no webhook url given and telegram.webhook_url is empty")
			}
			if secret == "" {
				secret = cfg.Telegram.WebhookSecret
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), apiTimeout)
			defer cancel()

			if err := client.SetWebhookWith(ctx, telegram.SetWebhookRequest{URL: url, SecretToken: secret}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Webhook set:"), url)
			return nil
		},
	}
	set.Flags().StringVar(&secret, "secret", "", "Secret token (defaults to telegram.webhook_secret)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the webhook so the bot can poll",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := loadClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), apiTimeout)
			defer cancel()

			if err := client.ClearWebhook(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Webhook cleared"))
			return nil
		},
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := loadClient(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), apiTimeout)
			defer cancel()

			wi, err := client.GetWebhookInfo(ctx)
			if err != nil {
				return err
			}
			printWebhookInfo(cmd.OutOrStdout(), wi)
			return nil
		},
	}

	cmd.AddCommand(set, clearCmd, info)
	return cmd
}

func printWebhookInfo(w io.Writer, wi *telegram.WebhookInfo) {
	if wi.URL == "" {
		fmt.Fprintln(w, color.YellowString("No webhook registered (polling mode)"))
	} else {
		fmt.Fprintf(w, "url:      %s\n", wi.URL)
	}
	fmt.Fprintf(w, "pending:  %d\n", wi.PendingUpdateCount)
	if wi.LastErrorDate != 0 {
		at := time.Unix(wi.LastErrorDate, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%s %s (%s)\n", color.RedString("last error:"), wi.LastErrorMessage, at)
	}
}
