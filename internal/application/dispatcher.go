package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
)

// HandlerFunc handles one classified event.
type HandlerFunc func(ctx context.Context, ev model.Event) error

// Route keys of the registration table.
const (
	RouteStart = "command:start"
	RoutePhoto = "photo"
	RouteText  = "text"
)

// Dispatcher routes events through a registration table that is fixed at
// construction time, so it is safe for concurrent use without locking.
type Dispatcher struct {
	routes map[string]HandlerFunc
	log    *zerolog.Logger
}

// DefaultRoutes maps /start and plain text to the greeting and photos to the
// photo analysis.
func DefaultRoutes(f *BotFacade) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		RouteStart: f.HandleStart,
		RoutePhoto: f.HandlePhoto,
		RouteText:  f.HandleStart,
	}
}

func NewDispatcher(routes map[string]HandlerFunc, log *zerolog.Logger) *Dispatcher {
	table := make(map[string]HandlerFunc, len(routes))
	for k, h := range routes {
		if h != nil {
			table[k] = h
		}
	}
	return &Dispatcher{routes: table, log: log}
}

// RouteKey returns the table key for ev.
func RouteKey(ev model.Event) string {
	switch e := ev.(type) {
	case model.CommandEvent:
		return "command:" + strings.ToLower(e.Name)
	case model.PhotoEvent:
		return RoutePhoto
	case model.TextEvent:
		return RouteText
	default:
		return ""
	}
}

// Dispatch runs the handler registered for ev. Events without a handler are
// ignored. The returned error is the handler's (transport) error.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event) error {
	if ev == nil {
		return nil
	}
	ctx = logging.WithChatID(ctx, ev.Chat())
	ctx = logging.WithUpdateID(ctx, ev.Update())

	key := RouteKey(ev)
	h, ok := d.routes[key]
	if !ok {
		metrics.IncUpdate("ignored")
		logging.With(ctx, d.log).Debug().Str("route", key).Msg("no handler, update ignored")
		return nil
	}
	metrics.IncUpdate(string(ev.Kind()))

	if err := h(ctx, ev); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
