package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// defaultRunListLimit caps run listings unless the caller asks otherwise.
const defaultRunListLimit = 100

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// limitParam parses the ?limit query parameter.
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultRunListLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return defaultRunListLimit
	}

	return limit
}

// requestLogger logs incoming HTTP requests.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("remote", r.RemoteAddr).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	})
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus returns the watcher status, when a watcher is running.
func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.watcher == nil {
		writeJSON(w, http.StatusOK, map[string]any{"watcher": nil})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"watcher": s.watcher.Status(),
	})
}

// handleListProjects lists all projects.
func (s *server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to list projects")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"listing projects"})

		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// handleListPDRuns lists recent physical-design runs.
func (s *server) handleListPDRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListPDRuns(r.Context(), limitParam(r))
	if err != nil {
		s.log.WithError(err).Error("Failed to list pd runs")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"listing pd runs"})

		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// handleListDVRuns lists recent design-verification records.
func (s *server) handleListDVRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListDVRuns(r.Context(), limitParam(r))
	if err != nil {
		s.log.WithError(err).Error("Failed to list dv runs")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"listing dv runs"})

		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// handleIngest triggers a sweep of every pending file in the inbound
// directory and returns one summary per file.
func (s *server) handleIngest(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.processor.ProcessAll(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Manual ingest sweep failed")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"ingest sweep failed"})

		return
	}

	writeJSON(w, http.StatusOK, summaries)
}
