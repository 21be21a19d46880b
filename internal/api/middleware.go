package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/esglens/esglens/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// trace attaches a request logger carrying a trace ID, reusing the
// caller's X-Request-ID when present.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = logging.GenerateTraceID()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithTrace(r.Context(), s.logger, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog is a handlers.LogFormatter that writes through zerolog
// instead of the supplied writer.
func (s *Server) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	logger := logging.FromContext(p.Request.Context())
	var ev *zerolog.Event
	switch {
	case p.StatusCode >= http.StatusInternalServerError:
		ev = logger.Error()
	case p.StatusCode >= http.StatusBadRequest:
		ev = logger.Warn()
	default:
		ev = logger.Info()
	}
	ev.Str("operation", "http_request").
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Str("remote", p.Request.RemoteAddr).
		Msg("request handled")
}

// routeMetrics labels request metrics with the matched route template.
func (s *Server) routeMetrics(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.WrapHandler(route, next).ServeHTTP(w, r)
	})
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error().Str("operation", "recover").Msg(fmt.Sprint(v...))
}
