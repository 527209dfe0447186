package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.app.StatusHandler.HealthHandler)

	// API routes - Triage
	mux.HandleFunc("/api/diagnose", s.app.DiagnoseHandler.DiagnoseHandler) // POST - triage a symptom description

	// API routes - Knowledge base
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)    // GET - index and storage status
	mux.HandleFunc("/api/history", s.app.HistoryHandler.GetHistoryHandler) // GET - recent query log
	mux.HandleFunc("/api/reingest", s.app.ReingestHandler.ReingestHandler) // POST - trigger rebuild

	return mux
}
