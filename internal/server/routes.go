package server

import (
	"encoding/json"
	"net/http"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /api/formats", s.handleFormats)
	mux.HandleFunc("POST /api/questionnaire/read", s.handleRead)
	mux.HandleFunc("GET /api/questionnaire/read/{job_id}", s.handleReadStream)
	mux.HandleFunc("GET /api/jobs/{job_id}", s.handleJob)
	if s.services.Metrics != nil {
		mux.Handle("GET /metrics", s.services.Metrics.Handler())
	}
	if s.swaggerPath != "" {
		mux.HandleFunc("GET /swagger.json", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, s.swaggerPath)
		})
	}
}

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns basic server health.
//
//	@Summary		Health check
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady returns readiness. The server has no external stores, so ready
// tracks handler dependencies only.
//
//	@Summary		Readiness check
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
