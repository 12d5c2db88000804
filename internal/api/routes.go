package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/tracklab/posefilter/internal/config"
)

func (s *Server) setupRoutes(router *http.ServeMux) {
	// Configuration endpoints.
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("PUT /api/config", s.handleUpdateConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)

	// Tracking service endpoints.
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// Monitoring endpoints.
	router.HandleFunc("GET /api/pose", s.handleGetPose)
	router.HandleFunc("GET /api/health", s.handleHealthCheck)

	router.HandleFunc("GET /{$}", s.handleStatusPage)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleUpdateConfig replaces the live configuration. The running
// filter picks the new tuning up on its next invocation; input/output
// addresses take effect on service restart.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var newConfig config.Config

	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse configuration")
		return
	}

	s.store.Replace(&newConfig)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	configPath := saveRequest.Path
	if configPath == "" {
		configPath = s.configPath
	}
	if configPath == "" {
		configDir, err := config.GetDefaultConfigDir()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve default config directory")
			return
		}
		configPath = filepath.Join(configDir, "config.toml")
	}

	if err := config.SaveConfig(configPath, s.store.Snapshot()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save configuration: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	if s.service.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}

	if err := s.service.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to start service: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	if !s.service.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
		return
	}

	if err := s.service.Stop(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to stop service: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if s.service.IsRunning() {
		status = "running"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// handleGetPose returns the latest raw/filtered pose pair.
func (s *Server) handleGetPose(w http.ResponseWriter, r *http.Request) {
	sample, ok := s.service.LastSample()
	if !ok {
		writeError(w, http.StatusNotFound, "no pose processed yet")
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatusPage serves a minimal human-readable status page.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if s.service.IsRunning() {
		status = "running"
	}

	cfg := s.store.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>posefilter</title></head>
<body>
<h1>posefilter</h1>
<p>service: %s</p>
<p>input: %s &rarr; output: %s</p>
<p>see <a href="/api/config">/api/config</a> and <a href="/api/pose">/api/pose</a></p>
</body>
</html>
`, status, cfg.Input.BindAddr, cfg.Output.Addr)
}
