package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/infra/metrics"
)

const (
	healthPath  = "/healthz"
	metricsPath = "/metrics"

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout = 10 * time.Second
)

// NewRouter builds the HTTP surface: health and metrics always, the webhook
// endpoint when webhook is non-nil.
func NewRouter(webhookPath string, webhook http.Handler, log *zerolog.Logger) chi.Router {
	masked := map[string]string{}
	if webhook != nil {
		masked[webhookPath] = "webhook"
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID())
	r.Use(RequestLog(log, masked))
	r.Use(Recover(log))

	r.Get(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle(metricsPath, metrics.Handler())

	if webhook != nil {
		r.Post(webhookPath, webhook.ServeHTTP)
		r.Get(webhookPath, ping)
	}
	return r
}

// Server runs an http.Server until its context is cancelled.
type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

func NewServer(addr string, h http.Handler, log *zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shCtx); err != nil {
		s.log.Warn().Err(err).Msg("http server shutdown")
		return err
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
