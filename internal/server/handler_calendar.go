package server

import (
	"encoding/json"
	"net/http"

	"github.com/me/flowplan/internal/ics"
	"github.com/me/flowplan/pkg/model"
)

type exportRequest struct {
	Scheduled    []model.PlacedEvent `json:"scheduled"`
	CalendarName string              `json:"calendar_name,omitempty"`
}

// writeCalendar sends an iCalendar document as a file download.
func writeCalendar(w http.ResponseWriter, filename, data string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(data))
}

func (s *Server) handleExportCalendar(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.Scheduled) == 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid export request",
			model.FieldError{Field: "scheduled", Message: "must not be empty"},
		))
		return
	}

	name := req.CalendarName
	if name == "" {
		name = s.config.CalendarName
	}
	data, err := ics.Encode(req.Scheduled, name)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
		return
	}

	writeCalendar(w, "flowplan.ics", data)
}

func (s *Server) handleSyncCalendar(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if s.caldav == nil || !s.caldav.IsConfigured() {
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code:    model.ErrNotConfigured,
			Message: "CalDAV sync is not configured",
		})
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.Scheduled) == 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid sync request",
			model.FieldError{Field: "scheduled", Message: "must not be empty"},
		))
		return
	}

	if err := s.caldav.PushEvents(r.Context(), req.Scheduled); err != nil {
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code:    model.ErrInternal,
			Message: "push to CalDAV failed: " + err.Error(),
		})
		return
	}

	respondOK(w, reqID, map[string]any{"pushed": len(req.Scheduled)})
}
