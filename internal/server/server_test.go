package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/flowplan/internal/config"
	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/internal/planner"
	"github.com/me/flowplan/internal/store"
	"github.com/me/flowplan/internal/summarize"
	"github.com/me/flowplan/pkg/model"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return f.reply, f.err
}

func testServer(t *testing.T, gen llm.Generator, opts ...Option) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(config.DefaultServerConfig(), st, planner.New(gen, logger), logger, opts...)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func doGet(t *testing.T, srv *Server, path string) envelope {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: status=%d, want 200, body=%s", path, w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	return env
}

func doPost(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON envelope: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

func TestDiscovery(t *testing.T) {
	srv := testServer(t, nil)
	env := doGet(t, srv, "/api/v1/")
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "FlowPlan API" {
		t.Errorf("name = %q, want FlowPlan API", data.Name)
	}
	if len(data.Endpoints) < 10 {
		t.Errorf("endpoints count = %d, want >= 10", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)
	env := doGet(t, srv, "/api/v1/health")

	var data struct {
		Status  string `json:"status"`
		Store   string `json:"store"`
		Planner string `json:"planner"`
		CalDAV  string `json:"caldav"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Planner != "fallback_only" {
		t.Errorf("planner = %q, want fallback_only without a generator", data.Planner)
	}
	if data.CalDAV != "disabled" {
		t.Errorf("caldav = %q, want disabled", data.CalDAV)
	}
}

func TestPlanFallback(t *testing.T) {
	srv := testServer(t, nil)
	w := doPost(t, srv, "/api/v1/plan", `{"title":"Quarterly report","desc":"Collect numbers\nWrite the report"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200, body=%s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var plan model.PlanResponse
	json.Unmarshal(env.Data, &plan)
	if plan.Notes != planner.FallbackNotes {
		t.Errorf("notes = %q, want %q", plan.Notes, planner.FallbackNotes)
	}
	if len(plan.Subtasks) == 0 {
		t.Error("no subtasks returned")
	}
}

func TestPlanWithGenerator(t *testing.T) {
	gen := &fakeGenerator{reply: `{"subtasks":[{"text":"Research","duration":2}]}`}
	srv := testServer(t, gen)
	w := doPost(t, srv, "/api/v1/plan", `{"title":"Launch"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var plan model.PlanResponse
	json.Unmarshal(env.Data, &plan)
	if len(plan.Subtasks) != 1 || plan.Subtasks[0].Text != "Research" {
		t.Errorf("subtasks = %+v", plan.Subtasks)
	}
}

func TestPlanQuotaExhausted(t *testing.T) {
	srv := testServer(t, &fakeGenerator{err: llm.ErrQuotaExceeded})
	w := doPost(t, srv, "/api/v1/plan", `{"title":"Launch"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status=%d, want 402", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.ErrQuota {
		t.Errorf("error = %+v, want QUOTA_EXCEEDED", env.Error)
	}
}

func TestPlanMissingTitle(t *testing.T) {
	srv := testServer(t, nil)
	w := doPost(t, srv, "/api/v1/plan", `{"desc":"no title"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestSchedule(t *testing.T) {
	srv := testServer(t, nil)
	body := `{"tasks":[{"text":"Write draft","duration":1},{"text":"Review","duration":1}],"start_date":"2025-01-06"}`
	w := doPost(t, srv, "/api/v1/schedule", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var data struct {
		Scheduled []model.PlacedEvent `json:"scheduled"`
	}
	json.Unmarshal(env.Data, &data)
	if len(data.Scheduled) != 2 {
		t.Fatalf("got %d events, want 2", len(data.Scheduled))
	}
	first := data.Scheduled[0]
	if first.DateStr != "2025-01-06" || first.Start != "09:00" || first.End != "10:00" {
		t.Errorf("first event = %+v", first)
	}
	if first.Timezone != model.DefaultTimezone {
		t.Errorf("timezone = %q, want default applied", first.Timezone)
	}
}

func TestScheduleUnschedulable(t *testing.T) {
	srv := testServer(t, nil)
	body := `{"tasks":[{"text":"Marathon","duration":5}],"start_date":"2025-01-06"}`
	w := doPost(t, srv, "/api/v1/schedule", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422, body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.ErrUnschedulable {
		t.Errorf("error = %+v, want UNSCHEDULABLE", env.Error)
	}
}

func TestScheduleEmptyTasks(t *testing.T) {
	srv := testServer(t, nil)
	w := doPost(t, srv, "/api/v1/schedule", `{"tasks":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestExportCalendar(t *testing.T) {
	srv := testServer(t, nil)
	body := `{"scheduled":[{"id":1,"title":"Write draft","dateStr":"2025-01-06","start":"09:00","end":"10:00","duration":1}],"calendar_name":"Test"}`
	w := doPost(t, srv, "/api/v1/calendar/export", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content-type = %q, want text/calendar", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "flowplan.ics") {
		t.Errorf("content-disposition = %q", cd)
	}
	doc := w.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "DTSTART:20250106T090000", "SUMMARY:Write draft", "X-WR-CALNAME:Test"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestSyncCalendarNotConfigured(t *testing.T) {
	srv := testServer(t, nil)
	w := doPost(t, srv, "/api/v1/calendar/sync", `{"scheduled":[{"id":1,"title":"X","dateStr":"2025-01-06","start":"09:00","end":"10:00"}]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.ErrNotConfigured {
		t.Errorf("error = %+v, want NOT_CONFIGURED", env.Error)
	}
}

func TestSummarizeTextNotConfigured(t *testing.T) {
	srv := testServer(t, nil)
	w := doPost(t, srv, "/api/v1/summarize/text", `{"text":"long note"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", w.Code)
	}
}

func TestSummarizeText(t *testing.T) {
	gen := &fakeGenerator{reply: "- point one"}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	srv := testServer(t, gen, WithSummarizer(summarize.New(gen, logger)))

	w := doPost(t, srv, "/api/v1/summarize/text", `{"text":"a note about things"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	var data struct {
		Summary string `json:"summary"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Summary != "- point one" {
		t.Errorf("summary = %q", data.Summary)
	}
}

func TestExtractTodos(t *testing.T) {
	gen := &fakeGenerator{reply: "- buy milk"}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	srv := testServer(t, gen, WithSummarizer(summarize.New(gen, logger)))

	w := doPost(t, srv, "/api/v1/todos/extract", `{"text":"remember to buy milk"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
}

func createGoal(t *testing.T, srv *Server) model.SavedPlan {
	t.Helper()
	body := `{"title":"Launch product","desc":"Research market\nBuild prototype","scope":"weekly","start_date":"2025-01-06"}`
	w := doPost(t, srv, "/api/v1/goals/", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /goals: status=%d, body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	var plan model.SavedPlan
	if err := json.Unmarshal(env.Data, &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	return plan
}

func TestCreateGoal(t *testing.T) {
	srv := testServer(t, nil)
	plan := createGoal(t, srv)

	if !strings.HasPrefix(plan.ID, "plan_") {
		t.Errorf("id = %q, want plan_ prefix", plan.ID)
	}
	if len(plan.Subtasks) == 0 || len(plan.Events) == 0 {
		t.Fatalf("plan = %+v, want subtasks and events", plan)
	}
	if plan.Events[0].DateStr != "2025-01-06" || plan.Events[0].Start != "09:00" {
		t.Errorf("first event = %+v", plan.Events[0])
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := testServer(t, nil)
	plan := createGoal(t, srv)

	env := doGet(t, srv, "/api/v1/goals/"+plan.ID+"/")
	var got model.SavedPlan
	json.Unmarshal(env.Data, &got)
	if got.ID != plan.ID || got.Title != "Launch product" {
		t.Errorf("got %+v", got)
	}

	env = doGet(t, srv, "/api/v1/goals/")
	if env.Pagination == nil || env.Pagination.Total != 1 {
		t.Errorf("pagination = %+v, want total 1", env.Pagination)
	}

	req := httptest.NewRequest("GET", "/api/v1/goals/"+plan.ID+"/export", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export: status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("export is not a calendar document")
	}

	req = httptest.NewRequest("DELETE", "/api/v1/goals/"+plan.ID+"/", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status=%d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/goals/"+plan.ID+"/", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status=%d, want 404", w.Code)
	}
}

func TestGetGoalNotFound(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest("GET", "/api/v1/goals/plan_missing/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestStartDateFor(t *testing.T) {
	now := mustDate(t, "2025-01-01") // a Wednesday

	tests := []struct {
		name  string
		scope model.Scope
		due   string
		want  string
	}{
		{"daily uses due date", model.ScopeDaily, "2025-01-10", "2025-01-10"},
		{"weekly uses monday of due week", model.ScopeWeekly, "2025-01-09", "2025-01-06"},
		{"monthly uses first of month", model.ScopeMonthly, "2025-02-15", "2025-02-01"},
		{"past start clamps to today", model.ScopeMonthly, "2025-01-20", "2025-01-01"},
		{"bad due uses today", model.ScopeWeekly, "whenever", "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startDateFor(tt.scope, tt.due, now); got != tt.want {
				t.Errorf("startDateFor(%s, %s) = %s, want %s", tt.scope, tt.due, got, tt.want)
			}
		})
	}
}

func TestResponseEnvelope_HasRequestID(t *testing.T) {
	srv := testServer(t, nil)
	env := doGet(t, srv, "/api/v1/health")
	if !strings.HasPrefix(env.RequestID, "req_") {
		t.Errorf("request_id = %q, want req_ prefix", env.RequestID)
	}
	if env.Timestamp == "" {
		t.Error("timestamp is empty")
	}
}

func TestResponseEnvelope_XRequestIDHeader(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	xReqID := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(xReqID, "req_") {
		t.Errorf("X-Request-ID header = %q, want req_ prefix", xReqID)
	}
}

func mustDate(t *testing.T, s string) (out time.Time) {
	t.Helper()
	out, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return out
}
