package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"telegram-nutrition-bot/internal/config"
	tele "telegram-nutrition-bot/internal/infra/adapters/telegram"
	"telegram-nutrition-bot/internal/infra/logging"
)

func webhookCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}

	var drop bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook so the bot can poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, err := connect(flags)
			if err != nil {
				return err
			}
			if err := tele.DeleteWebhook(bot, drop); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return nil
		},
	}
	del.Flags().BoolVar(&drop, "drop-pending", false, "drop updates queued on Telegram's side")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set",
			Short: "Register webhook.url (and webhook.secret) with Telegram",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig(flags.configPath, flags.dev)
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
				bot, err := tele.NewBotAPI(cfg.Bot, logging.New(cfg.Log, cfg.Runtime.Dev))
				if err != nil {
					return err
				}
				if err := tele.SetWebhook(bot, cfg.Webhook); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "webhook set")
				return nil
			},
		},
		del,
		&cobra.Command{
			Use:   "info",
			Short: "Show the current webhook registration",
			RunE: func(cmd *cobra.Command, args []string) error {
				bot, err := connect(flags)
				if err != nil {
					return err
				}
				info, err := tele.WebhookInfo(bot)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "url:             %s\n", info.URL)
				fmt.Fprintf(out, "pending updates: %d\n", info.PendingUpdateCount)
				fmt.Fprintf(out, "max connections: %d\n", info.MaxConnections)
				fmt.Fprintf(out, "allowed updates: %v\n", info.AllowedUpdates)
				if info.LastErrorDate != 0 {
					at := time.Unix(int64(info.LastErrorDate), 0).UTC().Format(time.RFC3339)
					fmt.Fprintf(out, "last error:      %s (%s)\n", info.LastErrorMessage, at)
				}
				return nil
			},
		},
	)
	return cmd
}

// connect authorizes with the configured token.
func connect(flags *rootFlags) (tele.BotAPI, error) {
	cfg, err := config.LoadConfig(flags.configPath, flags.dev)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return tele.NewBotAPI(cfg.Bot, logging.New(cfg.Log, cfg.Runtime.Dev))
}
