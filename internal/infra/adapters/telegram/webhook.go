package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/config"
	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
)

// SecretHeader carries webhook.secret on every delivery from Telegram.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxWebhookBody = 1 << 20

// Server is the HTTP listener the webhook handler is mounted on.
type Server interface {
	Run(ctx context.Context) error
}

var (
	_ Delivery     = (*Webhook)(nil)
	_ http.Handler = (*Webhook)(nil)
)

// Webhook receives updates pushed by Telegram.
type Webhook struct {
	api        BotAPI
	dispatcher Dispatcher
	cfg        config.WebhookConfig
	server     Server
	log        *zerolog.Logger
}

func NewWebhook(api BotAPI, d Dispatcher, cfg config.WebhookConfig, log *zerolog.Logger) *Webhook {
	return &Webhook{api: api, dispatcher: d, cfg: cfg, log: log}
}

// Attach sets the server Run starts. The server is built around the handler,
// so it is attached after construction.
func (w *Webhook) Attach(s Server) { w.server = s }

// Run registers the webhook with Telegram (unless disabled) and serves until
// ctx is cancelled.
func (w *Webhook) Run(ctx context.Context) error {
	if w.server == nil {
		return errors.New("webhook: no server attached")
	}
	if !w.cfg.SkipRegister {
		if err := SetWebhook(w.api, w.cfg); err != nil {
			return err
		}
		w.log.Info().Str("host", webhookHost(w.cfg.URL)).Msg("webhook registered")
	}
	return w.server.Run(ctx)
}

// ServeHTTP handles one delivery. Telegram retries non-2xx answers, so
// handler failures still get 200; only unreadable bodies get 500.
// Handling outlives the request: a dropped connection must not cut the
// photo flow short before its final reply.
func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	l := logging.With(ctx, w.log)

	if w.cfg.Secret != "" &&
		subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(w.cfg.Secret)) != 1 {
		metrics.IncWebhook("unauthorized")
		l.Warn().Msg("webhook secret mismatch")
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var up tgbotapi.Update
	body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxWebhookBody))
	if err == nil {
		err = json.Unmarshal(body, &up)
	}
	if err != nil {
		metrics.IncWebhook("parse_error")
		err = fmt.Errorf("%w: %w", domain.ErrPayloadParse, err)
		l.Error().Err(err).Msg("webhook body is not a valid update")
		http.Error(rw, "invalid update payload", http.StatusInternalServerError)
		return
	}

	if ev := ToEvent(up); ev != nil {
		if err := w.dispatcher.Dispatch(ctx, ev); err != nil {
			l.Error().Err(err).Int("update_id", up.UpdateID).Msg("update handling failed")
		}
	} else {
		metrics.IncUpdate("unsupported")
	}
	metrics.IncWebhook("ok")
	rw.WriteHeader(http.StatusOK)
}

// SetWebhook registers cfg.URL with Telegram. tgbotapi's WebhookConfig has
// no secret_token field, so the call is made with raw params.
func SetWebhook(api BotAPI, cfg config.WebhookConfig) error {
	if cfg.URL == "" {
		return errors.New("webhook: url is empty")
	}
	params := tgbotapi.Params{"url": cfg.URL}
	params.AddNonEmpty("secret_token", cfg.Secret)
	if err := params.AddInterface("allowed_updates", []string{"message"}); err != nil {
		return fmt.Errorf("webhook: encode allowed_updates: %w", err)
	}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("webhook: setWebhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the registration; pending updates are kept unless drop is set.
func DeleteWebhook(api BotAPI, drop bool) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: drop}); err != nil {
		return fmt.Errorf("webhook: deleteWebhook: %w", err)
	}
	return nil
}

// WebhookInfo reports the current registration.
func WebhookInfo(api BotAPI) (tgbotapi.WebhookInfo, error) {
	info, err := api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, fmt.Errorf("webhook: getWebhookInfo: %w", err)
	}
	return info, nil
}

// webhookHost keeps the token-bearing path out of logs.
func webhookHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
