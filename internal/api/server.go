// Package api serves the current ESG report, its insights and the upload
// endpoint over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/esglens/esglens/internal/dataset"
	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/insights"
	"github.com/esglens/esglens/internal/logging"
	"github.com/esglens/esglens/internal/metrics"
	"github.com/esglens/esglens/internal/store"
)

// DefaultMaxUploadBytes bounds multipart upload bodies.
const DefaultMaxUploadBytes = 20 << 20

// Archive is the persistence the API needs. *store.Store implements it.
type Archive interface {
	SaveRun(ctx context.Context, user string, report esg.Report, insights []string) (store.Run, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	SaveEvent(ctx context.Context, ev store.Event) (store.Event, error)
	ListEvents(ctx context.Context, limit int) ([]store.Event, error)
	CountEventsByType(ctx context.Context, feature string) (map[store.EventType]int, error)
	GetConversation(ctx context.Context, id string) (store.Conversation, error)
}

// Options configures a Server. Data and Insights are required.
type Options struct {
	Data         *dataset.Current
	Insights     *insights.Service
	Archive      Archive
	Metrics      *metrics.Metrics
	Placeholders esg.Placeholders

	MaxUploadBytes int64
	CORSOrigins    []string
	Logger         *zerolog.Logger
}

// Server holds the handlers' shared state.
type Server struct {
	data         *dataset.Current
	insights     *insights.Service
	archive      Archive
	metrics      *metrics.Metrics
	placeholders esg.Placeholders

	maxUploadBytes int64
	corsOrigins    []string
	logger         zerolog.Logger
}

// New builds a Server from opts.
func New(opts Options) (*Server, error) {
	if opts.Data == nil {
		return nil, errors.New("api: dataset is required")
	}
	if opts.Insights == nil {
		return nil, errors.New("api: insight service is required")
	}

	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	s := &Server{
		data:           opts.Data,
		insights:       opts.Insights,
		archive:        opts.Archive,
		metrics:        opts.Metrics,
		placeholders:   opts.Placeholders,
		maxUploadBytes: opts.MaxUploadBytes,
		corsOrigins:    opts.CORSOrigins,
		logger:         logging.ComponentLogger(base, "api"),
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	return s, nil
}

// Router returns the bare route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.routeMetrics)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	apiR := r.PathPrefix("/api").Subrouter()
	apiR.HandleFunc("/esg-data", s.handleEsgData).Methods(http.MethodGet)
	apiR.HandleFunc("/environmental-insights", s.categoryHandler(insights.CategoryEnvironmental)).Methods(http.MethodGet)
	apiR.HandleFunc("/social-insights", s.categoryHandler(insights.CategorySocial)).Methods(http.MethodGet)
	apiR.HandleFunc("/governance-insights", s.categoryHandler(insights.CategoryGovernance)).Methods(http.MethodGet)
	apiR.HandleFunc("/esg-upload", s.handleUpload).Methods(http.MethodPost)
	apiR.HandleFunc("/ai-events", s.handleCreateEvent).Methods(http.MethodPost)
	apiR.HandleFunc("/ai-events", s.handleListEvents).Methods(http.MethodGet)
	apiR.HandleFunc("/ai-events/summary", s.handleEventSummary).Methods(http.MethodGet)
	apiR.HandleFunc("/conversations/{id}", s.handleGetConversation).Methods(http.MethodGet)
	apiR.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return r
}

// Handler returns the router wrapped in tracing, access logging, panic
// recovery and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
	)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.accessLog)
	return s.trace(h)
}

// Timeouts bound the HTTP server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within t.Shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, t)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, t Timeouts) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      t.Write,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("operation", "serve").Str("addr", ln.Addr().String()).Msg("API listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdown := t.Shutdown
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdown)
	defer cancel()

	s.logger.Info().Str("operation", "shutdown").Msg("shutting down API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
