package server

import (
	"fmt"
	"net/http"

	"github.com/postforge/postforge/pkg/settings"
)

// handleGetSettings returns the current brand configuration, or an empty
// object before the first save.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg := s.settings.Current()
	if cfg == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handlePutSettings validates and persists a full brand configuration.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg settings.BrandConfig
	if err := decode(r, &cfg); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(cfg); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if err := s.settings.Save(&cfg); err != nil {
		writeError(w, fmt.Errorf("save settings: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, &cfg)
}
