package providers

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/postforge/postforge/pkg/ai"
)

const anthropicModel = "claude-sonnet-4-5"

func init() {
	ai.RegisterProvider("anthropic", func(apiKey string) (ai.Client, error) {
		return &anthropicClient{sdk: anthropicsdk.NewClient(option.WithAPIKey(apiKey))}, nil
	})
}

// anthropicClient is text-only; image, speech and transcription report
// UnsupportedError so callers can fall back or surface a clear message.
type anthropicClient struct {
	sdk anthropicsdk.Client
}

func (c *anthropicClient) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	var out string
	err := ai.WithRetry(ctx, 4, func() error {
		var innerErr error
		out, innerErr = c.doGenerateText(ctx, req)
		return innerErr
	})
	return out, err
}

func (c *anthropicClient) doGenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	msgs := make([]anthropicsdk.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case ai.RoleUser:
			msgs = append(msgs, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		case ai.RoleAssistant:
			msgs = append(msgs, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(m.Content)))
		}
	}
	msgs = append(msgs, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(req.Prompt)))

	maxTokens := int64(1500)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", mapAnthropicError(err)
	}
	for _, b := range msg.Content {
		if b.Type == "text" && b.Text != "" {
			return b.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: response carried no text block")
}

func (c *anthropicClient) GenerateImage(context.Context, ai.ImageRequest) (string, error) {
	return "", &ai.UnsupportedError{Provider: "anthropic", Operation: "image generation"}
}

func (c *anthropicClient) Synthesize(context.Context, ai.SpeechRequest) ([]byte, error) {
	return nil, &ai.UnsupportedError{Provider: "anthropic", Operation: "speech synthesis"}
}

func (c *anthropicClient) Transcribe(context.Context, ai.TranscribeRequest) (string, error) {
	return "", &ai.UnsupportedError{Provider: "anthropic", Operation: "transcription"}
}

func mapAnthropicError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		base := ai.ProviderError{Code: apiErr.StatusCode, Message: apiErr.Error(), Cause: err}
		switch apiErr.StatusCode {
		case 429:
			return &ai.RateLimitError{ProviderError: base}
		case 401, 403:
			return &ai.AuthError{ProviderError: base}
		case 500, 502, 503, 529:
			return &ai.ServerError{ProviderError: base}
		default:
			return &base
		}
	}
	return fmt.Errorf("anthropic: %w", err)
}
