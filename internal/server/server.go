package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/me/flowplan/internal/caldav"
	"github.com/me/flowplan/internal/config"
	"github.com/me/flowplan/internal/planner"
	"github.com/me/flowplan/internal/store"
	"github.com/me/flowplan/internal/summarize"
)

// Server is the FlowPlan REST API server.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.ServerConfig
	startTime  time.Time
	store      store.Store
	planner    *planner.Planner
	summarizer *summarize.Service // optional; nil disables /summarize and /todos
	caldav     *caldav.Client     // optional; nil disables /calendar/sync
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithSummarizer enables the summarize endpoints.
func WithSummarizer(svc *summarize.Service) Option {
	return func(s *Server) {
		s.summarizer = svc
	}
}

// WithCalDAV enables calendar sync.
func WithCalDAV(client *caldav.Client) Option {
	return func(s *Server) {
		s.caldav = client
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, pl *planner.Planner, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		planner:   pl,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes (JSON; calendar exports return text/calendar)
	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Planning & scheduling
		r.Post("/plan", s.handlePlanGoal)
		r.Post("/schedule", s.handleSchedule)

		// Calendar
		r.Route("/calendar", func(r chi.Router) {
			r.Post("/export", s.handleExportCalendar)
			r.Post("/sync", s.handleSyncCalendar)
		})

		// Summaries
		r.Post("/summarize/text", s.handleSummarizeText)
		r.Post("/summarize/image", s.handleSummarizeImage)
		r.Post("/todos/extract", s.handleExtractTodos)

		// Saved goals (plan + schedule + persist in one step)
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGoal)
				r.Get("/export", s.handleExportGoal)
				r.Delete("/", s.handleDeleteGoal)
			})
		})
	})
}
