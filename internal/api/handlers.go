package api

import (
	"net/http"

	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/insights"
	"github.com/esglens/esglens/internal/logging"
)

// dataResponse is the dashboard payload. The "mockData" name is kept for
// existing front ends.
type dataResponse struct {
	MockData esg.Report `json:"mockData"`
	Insights []string   `json:"insights"`
}

type categoryResponse struct {
	Metrics  any      `json:"metrics"`
	Insights []string `json:"insights"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func userParam(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "anonymous"
}

// handleEsgData serves the current report, generating combined insights on
// first use and archiving the run when persistence is configured.
func (s *Server) handleEsgData(w http.ResponseWriter, r *http.Request) {
	user := userParam(r)
	ctx := insights.ContextWithUser(r.Context(), user)
	logger := logging.FromContext(ctx)

	snap := s.data.Load()
	items := snap.Insights
	if len(items) == 0 {
		items = s.insights.Generate(ctx, insights.CategoryAll, snap.Report).Items
		if _, swapped := s.data.SetInsightsIfEmpty(snap, items); !swapped && len(items) > 0 {
			logger.Debug().Str("operation", "esg_data").Msg("dataset changed while generating insights")
		}
	}

	if s.archive != nil {
		_, err := s.archive.SaveRun(ctx, user, snap.Report, items)
		s.metrics.RunArchived(err)
		if err != nil {
			logger.Error().Err(err).Str("operation", "esg_data").Msg("failed to archive run")
		}
	}

	writeJSON(ctx, w, http.StatusOK, dataResponse{MockData: snap.Report, Insights: items})
}

// categoryHandler serves one report section with category insights,
// falling back to canned insights when the model yields none.
func (s *Server) categoryHandler(c insights.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := insights.ContextWithUser(r.Context(), userParam(r))
		section := insights.Payload(s.data.Load().Report, c)
		items := s.insights.ForCategory(ctx, c, section)
		writeJSON(ctx, w, http.StatusOK, categoryResponse{Metrics: section, Insights: items})
	}
}
