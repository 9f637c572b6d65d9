package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/postforge/postforge/pkg/ai"
)

const geminiModel = "gemini-1.5-pro"

func init() {
	ai.RegisterProvider("gemini", func(apiKey string) (ai.Client, error) {
		// genai.NewClient requires a context; use Background for construction.
		sdk, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("gemini: create client: %w", err)
		}
		return &geminiClient{sdk: sdk}, nil
	})
}

// geminiClient is text-only; image, speech and transcription report
// UnsupportedError.
type geminiClient struct {
	sdk *genai.Client
}

func (c *geminiClient) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	var out string
	err := ai.WithRetry(ctx, 4, func() error {
		var innerErr error
		out, innerErr = c.doGenerateText(ctx, req)
		return innerErr
	})
	return out, err
}

func (c *geminiClient) doGenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	model := c.sdk.GenerativeModel(geminiModel)

	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.MaxTokens > 0 {
		n := int32(req.MaxTokens)
		model.MaxOutputTokens = &n
	}

	// History becomes a chat session; the prompt is the final user turn.
	cs := model.StartChat()
	for _, m := range req.History {
		role := "user"
		if m.Role == ai.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", mapGeminiError(err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: response carried no text")
	}
	return b.String(), nil
}

func (c *geminiClient) GenerateImage(context.Context, ai.ImageRequest) (string, error) {
	return "", &ai.UnsupportedError{Provider: "gemini", Operation: "image generation"}
}

func (c *geminiClient) Synthesize(context.Context, ai.SpeechRequest) ([]byte, error) {
	return nil, &ai.UnsupportedError{Provider: "gemini", Operation: "speech synthesis"}
}

func (c *geminiClient) Transcribe(context.Context, ai.TranscribeRequest) (string, error) {
	return "", &ai.UnsupportedError{Provider: "gemini", Operation: "transcription"}
}

func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		base := ai.ProviderError{Code: apiErr.Code, Message: apiErr.Message, Cause: err}
		switch apiErr.Code {
		case 429:
			return &ai.RateLimitError{ProviderError: base}
		case 401, 403:
			return &ai.AuthError{ProviderError: base}
		case 500, 502, 503:
			return &ai.ServerError{ProviderError: base}
		default:
			return &base
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
