package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"telegram-nutrition-bot/internal/application"
	"telegram-nutrition-bot/internal/config"
	aiAdapters "telegram-nutrition-bot/internal/infra/adapters/ai"
	tele "telegram-nutrition-bot/internal/infra/adapters/telegram"
	"telegram-nutrition-bot/internal/infra/api"
	"telegram-nutrition-bot/internal/infra/i18n"
	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
	"telegram-nutrition-bot/internal/usecase"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (polling or webhook, per bot.mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if err := tgbotapi.SetLogger(logging.NewBotLogger(log)); err != nil {
		return fmt.Errorf("telegram logger: %w", err)
	}

	bot, err := tele.NewBotAPI(cfg.Bot, log)
	if err != nil {
		return err
	}

	tr, err := loadTranslator(cfg.Bot.Language, log)
	if err != nil {
		return err
	}

	vision, err := aiAdapters.NewFromConfig(ctx, cfg.AI, log)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	client := tele.NewClient(bot, cfg.Bot.DownloadTimeout, log)
	nutrition := usecase.NewNutritionUseCase(client, vision, tr.T(i18n.KeyNutritionPrompt), cfg.Bot.MaxImageBytes, log)
	facade := application.NewBotFacade(client, nutrition, textsFrom(tr), log)
	dispatcher := application.NewDispatcher(application.DefaultRoutes(facade), log)

	delivery, side := buildDelivery(cfg, bot, dispatcher, log)
	log.Info().
		Str("mode", cfg.Bot.Mode).
		Str("provider", vision.Name()).
		Str("model", cfg.AI.Model).
		Str("lang", tr.Lang()).
		Str("version", version).
		Msg("bot starting")

	if side != nil {
		go func() {
			if err := side.Run(ctx); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}
	if err := delivery.Run(ctx); err != nil {
		log.Error().Err(err).Msg("delivery stopped with error")
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// buildDelivery returns the update source for cfg.Bot.Mode and, in polling
// mode, a separate server exposing /healthz and /metrics.
func buildDelivery(cfg *config.Config, bot tele.BotAPI, d tele.Dispatcher, log *zerolog.Logger) (tele.Delivery, *api.Server) {
	if cfg.Bot.Mode == config.ModeWebhook {
		hook := tele.NewWebhook(bot, d, cfg.Webhook, log)
		router := api.NewRouter(cfg.Webhook.Path, hook, log)
		hook.Attach(api.NewServer(cfg.Webhook.ListenAddr(), router, log))
		// the default path is the bot token
		log.Info().
			Str("listen", cfg.Webhook.ListenAddr()).
			Str("path", logging.Redact(cfg.Webhook.Path, cfg.Runtime.Dev)).
			Bool("secret", cfg.Webhook.Secret != "").
			Msg("webhook delivery configured")
		return hook, nil
	}

	poller := tele.NewPoller(bot, d, cfg.Bot.Workers, log)
	if cfg.Metrics.Port <= 0 {
		return poller, nil
	}
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	return poller, api.NewServer(addr, api.NewRouter("", nil, log), log)
}

// loadTranslator falls back to English for unknown languages.
func loadTranslator(lang string, log *zerolog.Logger) (*i18n.Translator, error) {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, lang)
	if err != nil && lang != "en" {
		log.Warn().Err(err).Str("lang", lang).Msg("locale not found, using en")
		tr, err = i18n.NewTranslator(i18n.LocalesFS, "en")
	}
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}
	if err := tr.Validate(); err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}
	return tr, nil
}

func textsFrom(tr *i18n.Translator) application.Texts {
	return application.Texts{
		Greeting:   tr.T(i18n.KeyGreeting),
		Processing: tr.T(i18n.KeyProcessing),
		Failure:    tr.T(i18n.KeyFailure),
	}
}
