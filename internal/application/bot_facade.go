package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
)

// Texts are the fixed user-facing messages.
type Texts struct {
	Greeting   string
	Processing string
	Failure    string
}

// BotFacade holds the event handlers. It is built once at startup and shared
// by every delivery goroutine; it keeps no per-event state.
type BotFacade struct {
	messenger adapter.Messenger
	nutrition NutritionUseCaseIface
	texts     Texts
	log       *zerolog.Logger
}

func NewBotFacade(messenger adapter.Messenger, nutrition NutritionUseCaseIface, texts Texts, log *zerolog.Logger) *BotFacade {
	return &BotFacade{
		messenger: messenger,
		nutrition: nutrition,
		texts:     texts,
		log:       log,
	}
}

// HandleStart sends the welcome text. It serves both /start and plain text.
func (b *BotFacade) HandleStart(ctx context.Context, ev model.Event) error {
	return b.send(ctx, model.Reply{ChatID: ev.Chat(), Text: b.texts.Greeting})
}

// HandlePhoto acknowledges the photo, runs the estimate and replies with the
// provider's text or the generic failure text. Only the transport error of
// the final reply is returned.
func (b *BotFacade) HandlePhoto(ctx context.Context, ev model.Event) error {
	photo, ok := ev.(model.PhotoEvent)
	if !ok {
		return fmt.Errorf("%w: photo handler got %s event", domain.ErrInvalidArgument, ev.Kind())
	}
	l := logging.With(ctx, b.log).With().Str("file_id", photo.Photo.FileID).Logger()
	l.Info().Int("width", photo.Photo.Width).Int("height", photo.Photo.Height).Msg("photo received")

	if err := b.send(ctx, model.Reply{ChatID: photo.ChatID, Text: b.texts.Processing}); err != nil {
		l.Warn().Err(err).Msg("processing notice not delivered, continuing")
	}

	return b.send(ctx, model.Reply{ChatID: photo.ChatID, Text: b.analyze(ctx, photo, &l)})
}

// analyze is the recovery boundary of the photo flow: every failure,
// panics included, becomes the generic failure text.
func (b *BotFacade) analyze(ctx context.Context, photo model.PhotoEvent, l *zerolog.Logger) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			l.Error().Interface("panic", rec).Str("stack", string(debug.Stack())).Msg("photo analysis panicked")
			reply = b.texts.Failure
		}
	}()

	text, err := b.nutrition.Estimate(ctx, photo.Photo)
	if err != nil {
		l.Error().Err(err).Str("stage", failureStage(err)).Msg("photo analysis failed")
		return b.texts.Failure
	}
	return text
}

func (b *BotFacade) send(ctx context.Context, r model.Reply) error {
	err := b.messenger.SendMessage(ctx, r.ChatID, r.Text)
	metrics.IncReply(err == nil)
	if err != nil {
		if errors.Is(err, domain.ErrTransport) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return nil
}

func failureStage(err error) string {
	switch {
	case errors.Is(err, domain.ErrImageRetrieval):
		return "image_retrieval"
	case errors.Is(err, domain.ErrInference):
		return "inference"
	default:
		return "unknown"
	}
}
