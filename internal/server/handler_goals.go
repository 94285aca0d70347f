package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/flowplan/internal/ics"
	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/internal/schedule"
	"github.com/me/flowplan/pkg/model"
)

const dateLayout = "2006-01-02"

type createGoalRequest struct {
	Title  string      `json:"title"`
	Desc   string      `json:"desc,omitempty"`
	Due    string      `json:"due,omitempty"`
	Scope  model.Scope `json:"scope,omitempty"`
	Locale string      `json:"locale,omitempty"`

	StartDate string `json:"start_date,omitempty"`
	WorkHours string `json:"work_hours,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// handleCreateGoal plans a goal, schedules the subtasks, and persists the
// result as one saved plan.
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid goal request",
			model.FieldError{Field: "title", Message: "must not be empty"},
		))
		return
	}
	if req.Scope == "" {
		req.Scope = model.ScopeWeekly
	}

	plan, err := s.planner.PlanGoal(r.Context(), model.PlanRequest{
		Title:  req.Title,
		Desc:   req.Desc,
		Due:    req.Due,
		Scope:  req.Scope,
		Locale: req.Locale,
	})
	if err != nil {
		if errors.Is(err, llm.ErrQuotaExceeded) {
			respondError(w, reqID, http.StatusPaymentRequired, &model.APIError{
				Code:    model.ErrQuota,
				Message: "LLM quota exhausted, try again later",
			})
			return
		}
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}

	sched := model.ScheduleRequest{
		Tasks:     plan.Subtasks,
		StartDate: req.StartDate,
		WorkHours: req.WorkHours,
		Timezone:  req.Timezone,
	}
	if sched.StartDate == "" {
		sched.StartDate = startDateFor(req.Scope, req.Due, time.Now())
	}
	if sched.WorkHours == "" {
		sched.WorkHours = s.config.WorkHours
	}
	if sched.Timezone == "" {
		sched.Timezone = s.config.Timezone
	}
	sched.ApplyDefaults()

	events, err := schedule.Schedule(sched.Tasks, sched.StartDate, sched.WorkHours, sched.Timezone)
	if err != nil {
		if errors.Is(err, schedule.ErrUnschedulable) {
			respondError(w, reqID, http.StatusUnprocessableEntity, &model.APIError{
				Code:    model.ErrUnschedulable,
				Message: err.Error(),
			})
			return
		}
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	saved := &model.SavedPlan{
		ID:        "plan_" + uuid.New().String()[:8],
		Title:     req.Title,
		Desc:      req.Desc,
		Scope:     req.Scope,
		Timezone:  sched.Timezone,
		Subtasks:  plan.Subtasks,
		Events:    events,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePlan(r.Context(), saved); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "persist plan: " + err.Error(),
		})
		return
	}

	respondCreated(w, reqID, saved)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Clamp()

	plans, total, err := s.store.ListPlans(r.Context(), opts)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	if plans == nil {
		plans = []*model.SavedPlan{}
	}

	respondList(w, reqID, plans, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(plans) < total,
	})
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	if plan == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan", id))
		return
	}
	respondOK(w, reqID, plan)
}

func (s *Server) handleExportGoal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	if plan == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan", id))
		return
	}

	data, err := ics.Encode(plan.Events, s.config.CalendarName)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	writeCalendar(w, plan.ID+".ics", data)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	if plan == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan", id))
		return
	}
	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}

// startDateFor derives a scheduling start date from the goal's scope and
// deadline: daily plans start on the due date itself, weekly plans on the
// Monday of the due date's week, monthly plans on the first of its month. A
// start in the past is clamped to today; an unusable deadline means today.
func startDateFor(scope model.Scope, due string, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	ref, err := time.Parse(dateLayout, due)
	if err != nil {
		return today.Format(dateLayout)
	}

	var start time.Time
	switch scope {
	case model.ScopeDaily:
		start = ref
	case model.ScopeMonthly:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		offset := (int(ref.Weekday()) + 6) % 7 // days since Monday
		start = ref.AddDate(0, 0, -offset)
	}
	if start.Before(today) {
		start = today
	}
	return start.Format(dateLayout)
}
