package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/postforge/postforge/pkg/ai"
)

type generateRequest struct {
	Prompt          string         `json:"prompt" validate:"required"`
	Platforms       []string       `json:"platforms"`
	CharacterLimits map[string]int `json:"characterLimits,omitempty"`
	Tone            string         `json:"tone,omitempty"`
	Language        string         `json:"language,omitempty"`
	GenerateImage   *bool          `json:"generateImage,omitempty"`
	IncludeEmojis   bool           `json:"includeEmojis,omitempty"`
	IncludeHashtags bool           `json:"includeHashtags,omitempty"`
	HashtagCount    int            `json:"hashtagCount,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// handleGenerate produces brand-aware content for the requested platforms,
// with an optional companion image.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if len(req.Platforms) == 0 {
		req.Platforms = []string{"twitter"}
	}
	if req.Tone == "" {
		req.Tone = "professional"
	}

	brand := s.settings.Current()
	client, err := s.textClientFor("")
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := client.GenerateText(r.Context(), ai.TextRequest{
		System: ai.ContentSystemPrompt(req.Language),
		Prompt: ai.BuildContentPrompt(ai.ContentRequest{
			Topic:           req.Prompt,
			Platforms:       req.Platforms,
			CharacterLimits: req.CharacterLimits,
			Tone:            req.Tone,
			Language:        req.Language,
			IncludeEmojis:   req.IncludeEmojis,
			IncludeHashtags: req.IncludeHashtags,
			HashtagCount:    req.HashtagCount,
		}, brand),
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		writeError(w, fmt.Errorf("generate content: %w", err))
		return
	}

	resp := generateResponse{Content: ai.CleanGeneratedContent(content)}

	if req.GenerateImage == nil || *req.GenerateImage {
		imgClient, err := s.imageClientFor()
		if err == nil {
			image, imgErr := imgClient.GenerateImage(r.Context(), ai.ImageRequest{
				Prompt: ai.BuildImagePrompt(req.Prompt, req.Tone, req.Language, brand),
			})
			if imgErr != nil {
				// The text succeeded; return it and note the image failure.
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

type imageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Size   string `json:"size,omitempty"`
	Style  string `json:"style,omitempty"`
}

// handleGenerateImages proxies a standalone image generation request.
func (s *Server) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	client, err := s.imageClientFor()
	if err != nil {
		writeError(w, err)
		return
	}
	image, err := client.GenerateImage(r.Context(), ai.ImageRequest{
		Prompt: req.Prompt,
		Size:   req.Size,
		Style:  req.Style,
	})
	if err != nil {
		writeError(w, fmt.Errorf("generate image: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": image})
}

// chatHistoryLimit bounds how much conversation is replayed to the model.
const chatHistoryLimit = 20

type chatRequest struct {
	Message  string           `json:"message" validate:"required"`
	History  []ai.ChatMessage `json:"history,omitempty"`
	Provider string           `json:"provider,omitempty"`
}

// handleChat relays one assistant turn, replaying at most the last twenty
// history messages.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	client, err := s.textClientFor(req.Provider)
	if err != nil {
		writeError(w, err)
		return
	}

	history := req.History
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}
	reply, err := client.GenerateText(r.Context(), ai.TextRequest{
		Prompt:    req.Message,
		System:    ai.ChatSystemPrompt,
		History:   history,
		MaxTokens: 500,
	})
	if err != nil {
		writeError(w, fmt.Errorf("chat: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

type speechRequest struct {
	Text  string  `json:"text" validate:"required"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// handleSpeech synthesizes the text and streams the MP3 back.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	cfg := s.settings.Current()
	if cfg == nil || cfg.APIKeys.OpenAI == "" {
		writeError(w, errConfig("openai API key is not configured"))
		return
	}
	client, err := s.newClient("openai", cfg.APIKeys.OpenAI)
	if err != nil {
		writeError(w, err)
		return
	}
	audio, err := client.Synthesize(r.Context(), ai.SpeechRequest{
		Text:  req.Text,
		Voice: req.Voice,
		Speed: req.Speed,
	})
	if err != nil {
		writeError(w, fmt.Errorf("synthesize speech: %w", err))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="speech.mp3"`)
	w.Write(audio)
}

// handleDownload proxies a generated image so the browser can save it without
// tripping over cross-origin rules. Only known provider hosts are fetched.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, fmt.Errorf("%w: url parameter is required", errBadJSON))
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		writeError(w, fmt.Errorf("%w: malformed url", errBadJSON))
		return
	}
	if !downloadAllowedHosts[u.Hostname()] {
		writeError(w, fmt.Errorf("%w: host %q is not allowed", errBadJSON, u.Hostname()))
		return
	}

	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.fetch.Do(upstream)
	if err != nil {
		writeError(w, &ai.ProviderError{Code: http.StatusBadGateway, Message: "image fetch failed", Cause: err})
		return
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(ct, "image/") {
		writeError(w, &ai.ProviderError{Code: resp.StatusCode, Message: "upstream did not return an image"})
		return
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="generated-image.png"`)
	io.Copy(w, resp.Body)
}
