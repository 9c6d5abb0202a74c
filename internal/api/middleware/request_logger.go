package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger attaches a request-scoped logger to the context and writes
// one line per finished request. Event streams and WebSocket upgrades also
// get a line when they open, since they can stay connected for hours.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			streaming := isStream(r)
			if streaming {
				reqLogger.Debug().Str("remote", r.RemoteAddr).Msg("stream opened")
			}

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			var ev *zerolog.Event
			switch {
			case ww.status >= 500:
				ev = reqLogger.Error()
			case ww.status >= 400:
				ev = reqLogger.Warn()
			default:
				ev = reqLogger.Info()
			}
			msg := "request"
			if streaming {
				msg = "stream closed"
			}
			ev.Int("status", ww.status).
				Int64("bytes", ww.bytes).
				Dur("duration", time.Since(start)).
				Msg(msg)
		})
	}
}

func isStream(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
