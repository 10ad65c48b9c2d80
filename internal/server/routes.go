package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - News digests
	mux.HandleFunc("/api/news", s.app.NewsHandler.GetNewsHandler)

	// API routes - Daily report and personal advice
	mux.HandleFunc("/api/reports/today", s.app.ReportHandler.GetTodayHandler)
	mux.HandleFunc("/api/reports/personal/regenerate", s.app.ReportHandler.RegeneratePersonalHandler)

	// API routes - Holdings
	mux.HandleFunc("/api/holdings", s.app.HoldingsHandler.HoldingsHandler)    // GET (list), POST (create)
	mux.HandleFunc("/api/holdings/", s.app.HoldingsHandler.HoldingByIDHandler) // DELETE /{id}

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/jobs", s.app.SchedulerHandler.GetJobsHandler)
	mux.HandleFunc("/api/scheduler/trigger-report", s.app.SchedulerHandler.TriggerReportHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
