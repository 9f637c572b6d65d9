// Package providers registers AI provider adapters.
// Import this package with a blank identifier to activate all providers:
//
//	import _ "github.com/postforge/postforge/pkg/ai/providers"
package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/postforge/postforge/pkg/ai"
)

const (
	openaiTextModel   = openai.GPT4
	openaiChatModel   = openai.GPT3Dot5Turbo
	openaiImageModel  = openai.CreateImageModelDallE3
	openaiSpeechModel = openai.TTSModel1
)

func init() {
	ai.RegisterProvider("openai", func(apiKey string) (ai.Client, error) {
		return &openaiClient{sdk: openai.NewClient(apiKey)}, nil
	})
}

// openaiClient implements every operation: chat, DALL-E, TTS and Whisper.
type openaiClient struct {
	sdk *openai.Client
}

func (c *openaiClient) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	var out string
	err := ai.WithRetry(ctx, 4, func() error {
		var innerErr error
		out, innerErr = c.doGenerateText(ctx, req)
		return innerErr
	})
	return out, err
}

func (c *openaiClient) doGenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	model := openaiTextModel
	if len(req.History) > 0 {
		model = openaiChatModel
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.History {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	resp, err := c.sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) GenerateImage(ctx context.Context, req ai.ImageRequest) (string, error) {
	size := req.Size
	if size == "" {
		size = openai.CreateImageSize1024x1024
	}
	style := req.Style
	if style == "" {
		style = openai.CreateImageStyleVivid
	}

	var url string
	err := ai.WithRetry(ctx, 4, func() error {
		resp, innerErr := c.sdk.CreateImage(ctx, openai.ImageRequest{
			Model:   openaiImageModel,
			Prompt:  req.Prompt,
			N:       1,
			Size:    size,
			Style:   style,
			Quality: openai.CreateImageQualityStandard,
		})
		if innerErr != nil {
			return mapOpenAIError(innerErr)
		}
		if len(resp.Data) == 0 || resp.Data[0].URL == "" {
			return fmt.Errorf("openai: image response carried no URL")
		}
		url = resp.Data[0].URL
		return nil
	})
	return url, err
}

func (c *openaiClient) Synthesize(ctx context.Context, req ai.SpeechRequest) ([]byte, error) {
	voice := openai.SpeechVoice(req.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}
	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	resp, err := c.sdk.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openaiSpeechModel,
		Input: req.Text,
		Voice: voice,
		Speed: speed,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai: read speech audio: %w", err)
	}
	return audio, nil
}

func (c *openaiClient) Transcribe(ctx context.Context, req ai.TranscribeRequest) (string, error) {
	resp, err := c.sdk.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: req.FileName,
		Reader:   bytes.NewReader(req.Audio),
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	return resp.Text, nil
}

func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		base := ai.ProviderError{
			Code:    apiErr.HTTPStatusCode,
			Message: apiErr.Message,
			Cause:   err,
		}
		switch apiErr.HTTPStatusCode {
		case 429:
			return &ai.RateLimitError{ProviderError: base}
		case 401, 403:
			return &ai.AuthError{ProviderError: base}
		case 400:
			if apiErr.Type == "invalid_request_error" && apiErr.Code == "content_policy_violation" {
				return &ai.ContentFilterError{ProviderError: base}
			}
			return &base
		case 500, 502, 503:
			return &ai.ServerError{ProviderError: base}
		default:
			return &base
		}
	}
	return fmt.Errorf("openai: %w", err)
}
