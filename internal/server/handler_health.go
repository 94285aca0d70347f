package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Store     string `json:"store"`
	Planner   string `json:"planner"`
	CalDAV    string `json:"caldav"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plannerMode := "fallback_only"
	if s.planner.HasGenerator() {
		plannerMode = "llm"
	}
	caldavMode := "disabled"
	if s.caldav != nil && s.caldav.IsConfigured() {
		caldavMode = "configured"
	}

	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   "0.1.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     "sqlite",
		Planner:   plannerMode,
		CalDAV:    caldavMode,
	})
}
