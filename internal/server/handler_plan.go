package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/pkg/model"
)

func (s *Server) handlePlanGoal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid plan request",
			model.FieldError{Field: "title", Message: "must not be empty"},
		))
		return
	}
	if req.Scope == "" {
		req.Scope = model.ScopeWeekly
	}

	resp, err := s.planner.PlanGoal(r.Context(), req)
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

	respondOK(w, reqID, resp)
}
