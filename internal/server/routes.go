package server

import (
	"net/http"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Dashboard
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/projection", s.handleProjection)
	mux.HandleFunc("/api/exposure", s.handleExposure)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/chart.png", s.handleChart)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
}
