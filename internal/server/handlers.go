package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/core/serial"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"results": s.store.Len(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleResults serves a consistent snapshot of the store; an in-progress
// batch can keep writing while this reads.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "serial")
	if !serial.Valid(token) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed serial"})
		return
	}

	result := s.store.Get(strings.ToUpper(token))
	if result == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "serial not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}
