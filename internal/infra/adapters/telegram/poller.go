package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
	"telegram-nutrition-bot/internal/infra/worker"
)

const pollTimeoutSeconds = 60

var _ Delivery = (*Poller)(nil)

// Poller long-polls getUpdates and hands every event to the worker pool.
type Poller struct {
	api        BotAPI
	dispatcher Dispatcher
	workers    int
	log        *zerolog.Logger
}

func NewPoller(api BotAPI, d Dispatcher, workers int, log *zerolog.Logger) *Poller {
	return &Poller{api: api, dispatcher: d, workers: workers, log: log}
}

// Run blocks until ctx is cancelled or the update channel closes. Events
// already handed to a worker are allowed to finish.
func (p *Poller) Run(ctx context.Context) error {
	// getUpdates is refused while a webhook is set.
	if _, err := p.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.log.Warn().Err(err).Msg("deleteWebhook failed, polling may be rejected")
	}

	pool := worker.NewPool(p.workers, p.log)
	pool.Start(context.WithoutCancel(ctx))
	defer pool.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	u.AllowedUpdates = []string{"message"}
	updates := p.api.GetUpdatesChan(u)
	p.log.Info().Int("workers", pool.Size()).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.log.Info().Msg("polling stopped, draining workers")
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			ev := ToEvent(up)
			if ev == nil {
				metrics.IncUpdate("unsupported")
				continue
			}
			err := pool.Submit(ctx, func(wctx context.Context) error {
				wctx = logging.WithTraceID(wctx, uuid.NewString())
				return p.dispatcher.Dispatch(wctx, ev)
			})
			if err != nil {
				logging.With(logging.WithUpdateID(ctx, up.UpdateID), p.log).Warn().Err(err).Msg("update dropped")
			}
		}
	}
}
