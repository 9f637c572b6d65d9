package server

import (
	"fmt"
	"net/http"

	"github.com/postforge/postforge/pkg/workflow"
)

type socialPostRequest struct {
	Platform workflow.SocialPlatform `json:"platform" validate:"required"`
	Content  string                  `json:"content" validate:"required"`
	Image    string                  `json:"image,omitempty"`
}

// handleSocialPost publishes content directly, outside the workflow graph.
func (s *Server) handleSocialPost(w http.ResponseWriter, r *http.Request) {
	var req socialPostRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	cfg := s.settings.Current()
	if cfg == nil {
		writeError(w, errConfig("settings are not configured yet"))
		return
	}
	poster, err := s.newPoster(req.Platform, cfg.SocialAccounts)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := poster.Post(r.Context(), req.Content, req.Image)
	if err != nil {
		writeError(w, fmt.Errorf("post to %s: %w", req.Platform, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"postId":  res.PostID,
	})
}

// handleTwitterVerify checks the stored Twitter credentials against the API.
func (s *Server) handleTwitterVerify(w http.ResponseWriter, r *http.Request) {
	cfg := s.settings.Current()
	if cfg == nil {
		writeError(w, errConfig("settings are not configured yet"))
		return
	}
	poster, err := s.newPoster(workflow.PlatformTwitter, cfg.SocialAccounts)
	if err != nil {
		writeError(w, err)
		return
	}

	username, err := poster.Verify(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"verified": false,
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"verified": true,
		"username": username,
	})
}
