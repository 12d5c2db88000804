// Package api exposes the control surface of the daemon: an HTTP
// configuration/monitoring API and the tracking service it manages.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/tracklab/posefilter/internal/config"
)

// Server is the HTTP control server.
type Server struct {
	server     *http.Server
	store      *config.Store
	configPath string
	service    *TrackingService
	port       int
}

// NewServer creates a control server around the configuration store.
// configPath is where POST /api/config/save writes by default; it may
// be empty.
func NewServer(store *config.Store, configPath string, port int) *Server {
	return &Server{
		store:      store,
		configPath: configPath,
		service:    NewTrackingService(store),
		port:       port,
	}
}

// Service returns the managed tracking service.
func (s *Server) Service() *TrackingService {
	return s.service
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	router := http.NewServeMux()
	s.setupRoutes(router)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: router,
	}

	log.Printf("control server listening on http://localhost:%d", s.port)
	return s.server.ListenAndServe()
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.server != nil {
		log.Println("stopping control server...")
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
