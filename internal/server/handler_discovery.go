package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "FlowPlan API",
		Version:     "v1",
		Description: "FlowPlan — goal planning, work-hours scheduling, and calendar export",
		Endpoints: []endpointInfo{
			{"/api/v1/plan", []string{"POST"}, "Break a goal into estimated subtasks"},
			{"/api/v1/schedule", []string{"POST"}, "Place subtasks into workday slots"},
			{"/api/v1/calendar/export", []string{"POST"}, "Render scheduled events as an iCalendar file"},
			{"/api/v1/calendar/sync", []string{"POST"}, "Push scheduled events to a CalDAV server"},
			{"/api/v1/summarize/text", []string{"POST"}, "Summarize long text (map-reduce over chunks)"},
			{"/api/v1/summarize/image", []string{"POST"}, "Summarize an uploaded image"},
			{"/api/v1/todos/extract", []string{"POST"}, "Extract actionable todos from free text"},
			{"/api/v1/goals", []string{"GET", "POST"}, "Saved goal plans. POST plans, schedules, and persists in one step"},
			{"/api/v1/goals/{id}", []string{"GET", "DELETE"}, "Single saved plan"},
			{"/api/v1/goals/{id}/export", []string{"GET"}, "Download a saved plan as an iCalendar file"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
