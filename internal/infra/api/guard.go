package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/infra/logging"
)

// RequestIDHeader is echoed back so a caller can correlate log lines.
const RequestIDHeader = "X-Request-Id"

type Middleware func(http.Handler) http.Handler

// TraceID puts a trace id on the request context, reusing the caller's
// X-Request-Id when present.
func TraceID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := r.Header.Get(RequestIDHeader)
			if tid == "" || len(tid) > 64 {
				tid = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, tid)
			next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), tid)))
		})
	}
}

// RequestLog writes one line per request. Probes and scrapes log at debug.
// Routes listed in masked are logged by name only; the webhook path carries
// the bot token.
func RequestLog(logger *zerolog.Logger, masked map[string]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l := logging.With(r.Context(), logger)
			ev := l.Info()
			if r.URL.Path == healthPath || r.URL.Path == metricsPath {
				ev = l.Debug()
			}
			ev.Str("method", r.Method).
				Str("route", routePattern(r, masked)).
				Str("remote", r.RemoteAddr).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

// Recover turns a handler panic into a 500.
func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				l := logging.With(r.Context(), logger)
				l.Error().Interface("panic", rec).Str("stack", string(debug.Stack())).Msg("panic recovered")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request, masked map[string]string) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	p := rc.RoutePattern()
	if name, ok := masked[p]; ok {
		return name
	}
	return p
}
