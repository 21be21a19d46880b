package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/esglens/esglens/internal/dataset"
	"github.com/esglens/esglens/internal/demo"
	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/insights"
	"github.com/esglens/esglens/internal/metrics"
	"github.com/esglens/esglens/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLLM struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeLLM) Complete(context.Context, string, string) (insights.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return insights.Completion{}, f.err
	}
	return insights.Completion{Text: f.text, Model: "fake"}, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeArchive struct {
	mu            sync.Mutex
	runs          []store.Run
	events        []store.Event
	conversations map[string]store.Conversation
	saveErr       error
	lastLimit     int
	lastFeature   string
	panicList     bool
}

func (a *fakeArchive) SaveRun(_ context.Context, user string, r esg.Report, ins []string) (store.Run, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return store.Run{}, a.saveErr
	}
	run := store.Run{ID: fmt.Sprintf("run-%d", len(a.runs)+1), User: user, Report: r, Insights: ins}
	a.runs = append(a.runs, run)
	return run, nil
}

func (a *fakeArchive) ListRuns(_ context.Context, limit int) ([]store.Run, error) {
	if a.panicList {
		panic("archive exploded")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastLimit = limit
	return a.runs, nil
}

func (a *fakeArchive) SaveEvent(_ context.Context, ev store.Event) (store.Event, error) {
	if !ev.Type.Valid() {
		return store.Event{}, store.ErrInvalidEventType
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	ev.ID = "evt-1"
	a.events = append(a.events, ev)
	return ev, nil
}

func (a *fakeArchive) ListEvents(_ context.Context, limit int) ([]store.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastLimit = limit
	return a.events, nil
}

func (a *fakeArchive) CountEventsByType(_ context.Context, feature string) (map[store.EventType]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFeature = feature
	out := make(map[store.EventType]int)
	for _, ev := range a.events {
		if feature == "" || ev.Feature == feature {
			out[ev.Type]++
		}
	}
	return out, nil
}

func (a *fakeArchive) GetConversation(_ context.Context, id string) (store.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.conversations[id]
	if !ok {
		return store.Conversation{}, store.ErrNotFound
	}
	return c, nil
}

type testEnv struct {
	server  *Server
	handler http.Handler
	data    *dataset.Current
	llm     *fakeLLM
	archive *fakeArchive
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, archive *fakeArchive, mutate ...func(*Options)) *testEnv {
	t.Helper()
	llm := &fakeLLM{text: "- First insight\n- Second insight"}
	data := dataset.New(demo.Baseline(), "demo")
	m := metrics.New()

	opts := Options{
		Data:         data,
		Insights:     insights.NewService(llm, insights.WithObserver(m.ObserveInsight)),
		Metrics:      m,
		Placeholders: esg.DefaultPlaceholders(),
	}
	if archive != nil {
		opts.Archive = archive
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	srv, err := New(opts)
	require.NoError(t, err)
	return &testEnv{server: srv, handler: srv.Handler(), data: data, llm: llm, archive: archive, metrics: m}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/esg-upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type dataPayload struct {
	MockData esg.Report `json:"mockData"`
	Insights []string   `json:"insights"`
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Data: dataset.New(demo.Baseline(), "demo")})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := env.do(req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestEsgData_GeneratesInsightsOnce(t *testing.T) {
	archive := &fakeArchive{}
	env := newTestEnv(t, archive)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data?user=alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[dataPayload](t, rec)
	assert.Equal(t, []string{"First insight", "Second insight"}, body.Insights)
	assert.InDelta(t, 12500000.0, body.MockData.Metrics.CarbonTax, 1e-9)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.llm.callCount(), "insights are generated once")
	assert.Equal(t, []string{"First insight", "Second insight"}, env.data.Load().Insights)

	require.Len(t, archive.runs, 2)
	assert.Equal(t, "alice", archive.runs[0].User)
	assert.Equal(t, "anonymous", archive.runs[1].User)
}

func TestEsgData_LLMFailureStillServes(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{saveErr: errors.New("disk full")})
	env.llm.err = errors.New("quota exceeded")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[dataPayload](t, rec)
	assert.Empty(t, body.Insights)
	assert.NotNil(t, body.Insights)

	// No insights were stored, so the next request tries again.
	env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	assert.Equal(t, 2, env.llm.callCount())
}

func TestCategoryEndpoints(t *testing.T) {
	tests := []struct {
		path     string
		category insights.Category
		metric   string
	}{
		{"/api/environmental-insights", insights.CategoryEnvironmental, "energyUsage"},
		{"/api/social-insights", insights.CategorySocial, "supplierDiversity"},
		{"/api/governance-insights", insights.CategoryGovernance, "isoCompliance"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Metrics  map[string]any `json:"metrics"`
				Insights []string       `json:"insights"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Metrics, tt.metric)
			assert.Equal(t, []string{"First insight", "Second insight"}, body.Insights)

			env.llm.err = errors.New("down")
			rec = env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.category.Fallback(), body.Insights)
		})
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		status  int
		message string
	}{
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/esg-upload", strings.NewReader("{}"))
			},
			status:  http.StatusBadRequest,
			message: msgNoFile,
		},
		{
			name:    "no file field",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "", "", nil) },
			status:  http.StatusBadRequest,
			message: msgNoFile,
		},
		{
			name:    "unsupported type",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "file", "notes.txt", []byte("hi")) },
			status:  http.StatusBadRequest,
			message: "Unsupported file type. Please upload .json, .csv, .xlsx or .xls files.",
		},
		{
			name: "json missing fields",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "r.json", []byte(`{"summary":{"a":1}}`))
			},
			status:  http.StatusBadRequest,
			message: "JSON must contain summary and metrics fields.",
		},
		{
			name:    "empty sheet",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "file", "r.csv", []byte("Grid Electr\n")) },
			status:  http.StatusBadRequest,
			message: "Excel sheet is empty or could not be parsed.",
		},
		{
			name:    "broken json",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "file", "r.json", []byte(`{oops`)) },
			status:  http.StatusInternalServerError,
			message: "Failed to process ESG upload.",
		},
		{
			name: "broken workbook",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "r.xlsx", []byte("PK not really"))
			},
			status:  http.StatusInternalServerError,
			message: "Failed to process ESG upload.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			before := env.data.Load()

			rec := env.do(tt.req(t))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody[errorBody](t, rec).Error)
			assert.Same(t, before, env.data.Load(), "dataset is untouched on failure")
			assert.Zero(t, env.llm.callCount())
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, nil, func(o *Options) { o.MaxUploadBytes = 512 })
	rec := env.do(multipartRequest(t, "file", "big.csv", bytes.Repeat([]byte("x"), 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_JSONReportServedAsUploaded(t *testing.T) {
	archive := &fakeArchive{}
	env := newTestEnv(t, archive)

	doc := `{
		"summary": {"environmental": {"carbonEmissions": 7, "renewableEnergyShare": "32%"}},
		"metrics": {"carbonTax": 1050},
		"reportingPeriod": "FY2024"
	}`
	rec := env.do(multipartRequest(t, "file", "board-pack.json", []byte(doc)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		MockData json.RawMessage `json:"mockData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, doc, string(body.MockData))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, doc, string(body.MockData))

	snap := env.data.Load()
	assert.InDelta(t, 7, snap.Report.Summary.Environmental.CarbonEmissions, 0)
	require.Len(t, archive.runs, 1)
	assert.Equal(t, snap.Report, archive.runs[0].Report)
}

func TestUpload_CSVReplacesDataset(t *testing.T) {
	env := newTestEnv(t, nil)

	csv := "Grid Electr,Onsite Sol,Diesel (L),Women (%)\n1000,200,5000,40\n800,100,3000,45\n"
	rec := env.do(multipartRequest(t, "file", "plant.csv", []byte(csv)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[dataPayload](t, rec)
	assert.Equal(t, []float64{1250, 930}, body.MockData.EnvironmentalMetrics.EnergyUsage)
	assert.InDelta(t, 42.5, body.MockData.Summary.Social.AvgWomenRepresentation, 1e-9)
	assert.Equal(t, []string{"First insight", "Second insight"}, body.Insights)

	snap := env.data.Load()
	assert.Equal(t, "upload:plant.csv", snap.Source)
	assert.Equal(t, body.MockData, snap.Report)

	// The uploaded report's insights are reused by the dashboard.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.llm.callCount())
	assert.Equal(t, body.MockData, decodeBody[dataPayload](t, rec).MockData)
}

func TestUpload_JSONReport(t *testing.T) {
	env := newTestEnv(t, nil)
	env.llm.err = errors.New("offline")

	report := esg.BuildFromRows([]esg.RawRow{{"Grid Electr": 1111111}})
	data, err := json.Marshal(report)
	require.NoError(t, err)

	rec := env.do(multipartRequest(t, "file", "REPORT.JSON", data))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[dataPayload](t, rec)
	assert.InDelta(t, 150000.0, body.MockData.Metrics.CarbonTax, 1e-9)
	assert.Empty(t, body.Insights)
}

func TestEvents(t *testing.T) {
	t.Run("no archive", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/ai-events", strings.NewReader(`{"type":"thumbs_up"}`)))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	archive := &fakeArchive{}
	env := newTestEnv(t, archive)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/ai-events", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidBody, decodeBody[errorBody](t, rec).Error)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/ai-events", strings.NewReader(`{"type":"love"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidType, decodeBody[errorBody](t, rec).Error)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/ai-events",
		strings.NewReader(`{"userId":"u1","feature":"esg-insights-all","type":"copy_response","meta":{"len":3}}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	ev := decodeBody[store.Event](t, rec)
	assert.Equal(t, "evt-1", ev.ID)
	require.Len(t, archive.events, 1)
	assert.Equal(t, store.EventCopyResponse, archive.events[0].Type)
}

func TestEventFeedbackReadback(t *testing.T) {
	t.Run("no archive", func(t *testing.T) {
		env := newTestEnv(t, nil)
		for _, path := range []string{"/api/ai-events", "/api/ai-events/summary", "/api/conversations/c1"} {
			rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		}
	})

	archive := &fakeArchive{}
	env := newTestEnv(t, archive)
	for _, body := range []string{
		`{"userId":"u1","feature":"esg-insights-all","type":"thumbs_up"}`,
		`{"userId":"u2","feature":"esg-insights-all","type":"thumbs_up"}`,
		`{"userId":"u1","feature":"esg-insights-social","type":"bug_report"}`,
	} {
		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/ai-events", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/ai-events?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/ai-events?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, archive.lastLimit)
	events := decodeBody[eventsResponse](t, rec)
	assert.Len(t, events.Events, 3)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/ai-events/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[eventSummaryResponse](t, rec)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Counts[store.EventThumbsUp])
	assert.Equal(t, 1, summary.Counts[store.EventBugReport])
	assert.Len(t, summary.Counts, len(store.EventTypes()), "every type is reported")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/ai-events/summary?feature=esg-insights-social", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeBody[eventSummaryResponse](t, rec)
	assert.Equal(t, "esg-insights-social", archive.lastFeature)
	assert.Equal(t, "esg-insights-social", summary.Feature)
	assert.Equal(t, 1, summary.Total)
	assert.Zero(t, summary.Counts[store.EventThumbsUp])
}

func TestGetConversation(t *testing.T) {
	archive := &fakeArchive{conversations: map[string]store.Conversation{
		"c1": {
			ID:       "c1",
			Feature:  "esg-insights-all",
			Model:    "fake",
			Messages: []insights.Message{{Role: insights.RoleAssistant, Content: "- Cut diesel"}},
		},
	}}
	env := newTestEnv(t, archive)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/conversations/c1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decodeBody[store.Conversation](t, rec)
	assert.Equal(t, "fake", conv.Model)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "- Cut diesel", conv.Messages[0].Content)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/conversations/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgNoConversation, decodeBody[errorBody](t, rec).Error)
}

func TestRuns(t *testing.T) {
	t.Run("no archive", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	archive := &fakeArchive{}
	env := newTestEnv(t, archive)
	env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data?user=bob", nil))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, archive.lastLimit)

	var body struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "bob", body.Runs[0].User)
}

func TestPanicIsRecovered(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{panicList: true})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeBody[errorBody](t, rec).Error)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/esg-data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := env.do(req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(httptest.NewRequest(http.MethodGet, "/api/esg-data", nil))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `esglens_http_requests_total{method="GET",route="/api/esg-data",status="200"} 1`)
	assert.Contains(t, out, `esglens_insight_requests_total{category="all",outcome="success"} 1`)
}

func TestServe_GracefulShutdown(t *testing.T) {
	env := newTestEnv(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.server.Serve(ctx, ln, Timeouts{Read: time.Second, Write: time.Second, Shutdown: time.Second})
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	env := newTestEnv(t, nil)
	err := env.server.ListenAndServe(context.Background(), "256.0.0.1:http-nope", Timeouts{})
	require.Error(t, err)
}
