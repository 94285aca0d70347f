package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/me/flowplan/internal/schedule"
	"github.com/me/flowplan/pkg/model"
)

type scheduleResponse struct {
	Scheduled []model.PlacedEvent `json:"scheduled"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.Tasks) == 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid schedule request",
			model.FieldError{Field: "tasks", Message: "must not be empty"},
		))
		return
	}
	req.ApplyDefaults()

	events, err := schedule.Schedule(req.Tasks, req.StartDate, req.WorkHours, req.Timezone)
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

	respondOK(w, reqID, scheduleResponse{Scheduled: events})
}
