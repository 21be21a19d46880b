package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esglens/esglens/internal/insights"
)

func TestWrapHandler(t *testing.T) {
	m := New()
	h := m.WrapHandler("/api/esg-data", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/esg-data", "GET", "418")), 1e-9)
}

func TestObserveInsight(t *testing.T) {
	m := New()
	m.ObserveInsight(insights.CategorySocial, insights.OutcomeSuccess, time.Second)
	m.ObserveInsight(insights.CategorySocial, insights.OutcomeCached, 0)
	m.ObserveInsight(insights.CategorySocial, insights.OutcomeSuccess, time.Second)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.insightRequests.WithLabelValues("social", "success")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.insightRequests.WithLabelValues("social", "cached")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.insightDuration))
}

func TestObserveUploadAndRuns(t *testing.T) {
	m := New()
	m.ObserveUpload("xlsx", UploadAccepted, 12)
	m.ObserveUpload("", UploadRejected, 0)
	m.RunArchived(nil)
	m.RunArchived(errors.New("disk full"))
	m.DatasetReplaced(time.Unix(1700000000, 0))

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("xlsx", "accepted")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("unknown", "rejected")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.runsArchived.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, 1700000000.0, testutil.ToFloat64(m.datasetUpdated), 1e-9)
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.ObserveUpload("csv", UploadAccepted, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `esglens_uploads_total{format="csv",result="accepted"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveInsight(insights.CategoryAll, insights.OutcomeError, time.Second)
	m.ObserveUpload("json", UploadFailed, 0)
	m.DatasetReplaced(time.Now())
	m.RunArchived(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	m.WrapHandler("/x", next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
