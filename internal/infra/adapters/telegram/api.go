package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/config"
	"telegram-nutrition-bot/internal/domain/model"
)

// BotAPI is the part of *tgbotapi.BotAPI used by this package.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetFileDirectLink(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
}

var _ BotAPI = (*tgbotapi.BotAPI)(nil)

// Dispatcher receives converted events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.Event) error
}

// Delivery brings updates from Telegram to the Dispatcher until ctx is done.
type Delivery interface {
	Run(ctx context.Context) error
}

// NewBotAPI authenticates with Telegram (getMe) and returns the client.
func NewBotAPI(cfg config.BotConfig, log *zerolog.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authorize bot: %w", err)
	}
	bot.Debug = cfg.Debug
	log.Info().Str("username", bot.Self.UserName).Int64("bot_id", bot.Self.ID).Msg("telegram bot authorized")
	return bot, nil
}
