package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/me/flowplan/internal/llm"
	"github.com/me/flowplan/pkg/model"
)

// maxImageBytes bounds image uploads for vision summaries.
const maxImageBytes = 10 << 20

type summarizeTextRequest struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// requireSummarizer answers 503 when no generator is configured and reports
// whether the handler may proceed.
func (s *Server) requireSummarizer(w http.ResponseWriter, reqID string) bool {
	if s.summarizer == nil || !s.summarizer.IsConfigured() {
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code:    model.ErrNotConfigured,
			Message: "summarizer is not configured",
		})
		return false
	}
	return true
}

func (s *Server) respondGenerateError(w http.ResponseWriter, reqID string, err error) {
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
}

func (s *Server) handleSummarizeText(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireSummarizer(w, reqID) {
		return
	}

	var req summarizeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid summarize request",
			model.FieldError{Field: "text", Message: "must not be empty"},
		))
		return
	}

	summary, err := s.summarizer.SummarizeText(r.Context(), req.Text, req.Style)
	if err != nil {
		s.respondGenerateError(w, reqID, err)
		return
	}
	respondOK(w, reqID, summaryResponse{Summary: summary})
}

// handleSummarizeImage accepts a multipart upload with a "file" part and an
// optional "style" field.
func (s *Server) handleSummarizeImage(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireSummarizer(w, reqID) {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid multipart body: " + err.Error(),
		})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid summarize request",
			model.FieldError{Field: "file", Message: "image file part is required"},
		))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "read upload: " + err.Error(),
		})
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	summary, err := s.summarizer.SummarizeImage(r.Context(), image, mimeType, r.FormValue("style"))
	if err != nil {
		s.respondGenerateError(w, reqID, err)
		return
	}
	respondOK(w, reqID, summaryResponse{Summary: summary})
}

func (s *Server) handleExtractTodos(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireSummarizer(w, reqID) {
		return
	}

	var req summarizeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
			"invalid extract request",
			model.FieldError{Field: "text", Message: "must not be empty"},
		))
		return
	}

	todos, err := s.summarizer.ExtractTodos(r.Context(), req.Text)
	if err != nil {
		s.respondGenerateError(w, reqID, err)
		return
	}
	respondOK(w, reqID, map[string]any{"todos": todos})
}
