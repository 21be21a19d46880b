package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/esglens/esglens/internal/logging"
	"github.com/esglens/esglens/internal/store"
)

const (
	msgNoArchive      = "Persistence is not configured."
	msgInvalidBody    = "Invalid JSON body."
	msgInvalidType    = "Invalid event type."
	msgInvalidConvID  = "Invalid conversation id."
	msgInvalidLimit   = "limit must be a positive integer."
	msgArchiveFailure = "Failed to access archive."
	msgNoConversation = "Conversation not found."
	maxEventBodyBytes = 1 << 20
)

type eventRequest struct {
	UserID         string         `json:"userId"`
	ConversationID string         `json:"conversationId"`
	Feature        string         `json:"feature"`
	Type           string         `json:"type"`
	Meta           map[string]any `json:"meta"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.archive == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, msgNoArchive)
		return
	}

	var req eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ev, err := s.archive.SaveEvent(ctx, store.Event{
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Feature:        req.Feature,
		Type:           store.EventType(req.Type),
		Meta:           req.Meta,
	})
	switch {
	case errors.Is(err, store.ErrInvalidEventType):
		writeError(ctx, w, http.StatusBadRequest, msgInvalidType)
	case errors.Is(err, store.ErrInvalidConversationID):
		writeError(ctx, w, http.StatusBadRequest, msgInvalidConvID)
	case err != nil:
		logging.FromContext(ctx).Error().Err(err).Str("operation", "create_event").Msg("failed to save event")
		writeError(ctx, w, http.StatusInternalServerError, msgArchiveFailure)
	default:
		writeJSON(ctx, w, http.StatusCreated, ev)
	}
}

type runsResponse struct {
	Runs []store.Run `json:"runs"`
}

// queryLimit reads the optional positive limit parameter; 0 means the
// archive default.
func queryLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.archive == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, msgNoArchive)
		return
	}

	limit, ok := queryLimit(r)
	if !ok {
		writeError(ctx, w, http.StatusBadRequest, msgInvalidLimit)
		return
	}

	runs, err := s.archive.ListRuns(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("operation", "list_runs").Msg("failed to list runs")
		writeError(ctx, w, http.StatusInternalServerError, msgArchiveFailure)
		return
	}
	writeJSON(ctx, w, http.StatusOK, runsResponse{Runs: runs})
}

type eventsResponse struct {
	Events []store.Event `json:"events"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.archive == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, msgNoArchive)
		return
	}

	limit, ok := queryLimit(r)
	if !ok {
		writeError(ctx, w, http.StatusBadRequest, msgInvalidLimit)
		return
	}

	events, err := s.archive.ListEvents(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("operation", "list_events").Msg("failed to list events")
		writeError(ctx, w, http.StatusInternalServerError, msgArchiveFailure)
		return
	}
	writeJSON(ctx, w, http.StatusOK, eventsResponse{Events: events})
}

// eventSummaryResponse reports every accepted type, including those with no
// feedback yet.
type eventSummaryResponse struct {
	Feature string                  `json:"feature,omitempty"`
	Total   int                     `json:"total"`
	Counts  map[store.EventType]int `json:"counts"`
}

func (s *Server) handleEventSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.archive == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, msgNoArchive)
		return
	}

	feature := r.URL.Query().Get("feature")
	counts, err := s.archive.CountEventsByType(ctx, feature)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("operation", "count_events").Msg("failed to count events")
		writeError(ctx, w, http.StatusInternalServerError, msgArchiveFailure)
		return
	}

	resp := eventSummaryResponse{Feature: feature, Counts: make(map[store.EventType]int, len(counts))}
	for _, t := range store.EventTypes() {
		resp.Counts[t] = 0
	}
	for t, n := range counts {
		resp.Counts[t] = n
		resp.Total += n
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.archive == nil {
		writeError(ctx, w, http.StatusServiceUnavailable, msgNoArchive)
		return
	}

	conv, err := s.archive.GetConversation(ctx, mux.Vars(r)["id"])
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, msgNoConversation)
	case err != nil:
		logging.FromContext(ctx).Error().Err(err).Str("operation", "get_conversation").Msg("failed to load conversation")
		writeError(ctx, w, http.StatusInternalServerError, msgArchiveFailure)
	default:
		writeJSON(ctx, w, http.StatusOK, conv)
	}
}
