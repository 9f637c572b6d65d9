package server

import (
	"fmt"
	"net/http"

	"github.com/postforge/postforge/pkg/ai"
)

type blogRequest struct {
	Topic         string `json:"topic" validate:"required"`
	Keywords      string `json:"keywords,omitempty"`
	Tone          string `json:"tone,omitempty"`
	Language      string `json:"language,omitempty"`
	GenerateImage *bool  `json:"generateImage,omitempty"`
}

// handleGenerateBlog produces a long-form article with a wide featured image.
func (s *Server) handleGenerateBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if req.Tone == "" {
		req.Tone = "professional"
	}

	client, err := s.textClientFor("")
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := client.GenerateText(r.Context(), ai.TextRequest{
		System: ai.BlogSystemPrompt(req.Language),
		Prompt: ai.BuildBlogPrompt(ai.BlogRequest{
			Topic:    req.Topic,
			Keywords: req.Keywords,
			Tone:     req.Tone,
			Language: req.Language,
		}),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		writeError(w, fmt.Errorf("generate blog: %w", err))
		return
	}

	resp := generateResponse{Content: ai.CleanGeneratedContent(content)}

	if req.GenerateImage == nil || *req.GenerateImage {
		imgClient, err := s.imageClientFor()
		if err == nil {
			image, imgErr := imgClient.GenerateImage(r.Context(), ai.ImageRequest{
				Prompt: ai.BuildBlogImagePrompt(req.Topic, req.Tone, req.Language),
				// Wide format suits a blog header.
				Size: "1792x1024",
			})
			if imgErr != nil {
				writeJSON(w, http.StatusOK, struct {
					generateResponse
					ImageError string `json:"imageError"`
				}{resp, imgErr.Error()})
				return
			}
			resp.Image = image
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
