package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListNotifications returns the recent results, newest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.log.Results())
}

// handleRemoveNotification dismisses one entry. Idempotent.
func (s *Server) handleRemoveNotification(w http.ResponseWriter, r *http.Request) {
	s.log.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleClearNotifications dismisses everything.
func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.log.Clear()
	w.WriteHeader(http.StatusNoContent)
}
