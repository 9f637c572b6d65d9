package executors

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/pkg/ai"
	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/workflow"
)

// runAI dispatches to the executor for the node's operation.
func (r *Runner) runAI(ctx context.Context, node workflow.Node, req Request) (Outcome, error) {
	cfg, err := r.currentSettings()
	if err != nil {
		return Outcome{}, err
	}

	switch node.Operation {
	case workflow.OpTextToText:
		return r.runTextToText(ctx, node, req, cfg)
	case workflow.OpTextToImage:
		return r.runTextToImage(ctx, node, req, cfg)
	case workflow.OpTextToSpeech:
		return r.runTextToSpeech(ctx, node, req, cfg)
	case workflow.OpSpeechToText:
		return r.runSpeechToText(ctx, node, req, cfg)
	default:
		return Outcome{}, &UnsupportedOperationError{Operation: string(node.Operation)}
	}
}

func (r *Runner) runTextToText(ctx context.Context, node workflow.Node, req Request, cfg *settings.BrandConfig) (Outcome, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = node.Data.InputData.Text()
	}
	if prompt == "" {
		return Outcome{}, &ValidationError{Reason: "prompt is required"}
	}

	client, err := r.textClient(cfg)
	if err != nil {
		return Outcome{}, err
	}
	text, err := client.GenerateText(ctx, ai.TextRequest{
		Prompt: prompt,
		System: ai.ChatSystemPrompt,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("generate text: %w", err)
	}

	hashtagCount := 0
	if req.IncludeHashtags {
		hashtagCount = req.HashtagCount
	}
	r.finish(node, node.Operation.Label(),
		fmt.Sprintf("Prompt: %s\n\nResponse: %s", prompt, text),
		workflow.Payload{
			"text":            text,
			"prompt":          prompt,
			"includeEmojis":   req.IncludeEmojis,
			"includeHashtags": req.IncludeHashtags,
			"hashtagCount":    hashtagCount,
		})
	return Outcome{Message: text}, nil
}

func (r *Runner) runTextToImage(ctx context.Context, node workflow.Node, req Request, cfg *settings.BrandConfig) (Outcome, error) {
	// A propagated upstream text takes precedence over the typed prompt, so
	// a text producer wired into this node drives the image.
	prompt := node.Data.InputData.Text()
	if prompt == "" {
		prompt = req.Prompt
	}
	if prompt == "" {
		return Outcome{}, &ValidationError{Reason: "image description is required"}
	}

	client, err := r.imageClient(cfg)
	if err != nil {
		return Outcome{}, err
	}
	url, err := client.GenerateImage(ctx, ai.ImageRequest{
		Prompt: prompt,
		Size:   req.Size,
		Style:  req.Style,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("generate image: %w", err)
	}

	// Merge the new image into whatever input arrived earlier, so a social
	// target downstream sees text and image together once both exist.
	payload := node.Data.InputData.Clone()
	if payload == nil {
		payload = workflow.Payload{}
	}
	payload["image"] = url
	payload["prompt"] = prompt

	r.finish(node, node.Operation.Label(),
		fmt.Sprintf("Prompt: %s\n\nImage URL: %s", prompt, url),
		payload)
	return Outcome{Image: url}, nil
}

func (r *Runner) runTextToSpeech(ctx context.Context, node workflow.Node, req Request, cfg *settings.BrandConfig) (Outcome, error) {
	text := req.Prompt
	if text == "" {
		text = node.Data.InputData.Text()
	}
	if text == "" {
		return Outcome{}, &ValidationError{Reason: "text is required"}
	}

	client, err := r.audioClient(cfg)
	if err != nil {
		return Outcome{}, err
	}
	audio, err := client.Synthesize(ctx, ai.SpeechRequest{
		Text:  text,
		Voice: req.Voice,
		Speed: req.Speed,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("synthesize speech: %w", err)
	}

	// Audio has no downstream consumer, so nothing propagates.
	r.finish(node, node.Operation.Label(),
		fmt.Sprintf("Text: %s\n\nGenerated %d bytes of audio", text, len(audio)), nil)
	return Outcome{Audio: audio}, nil
}

func (r *Runner) runSpeechToText(ctx context.Context, node workflow.Node, req Request, cfg *settings.BrandConfig) (Outcome, error) {
	if len(req.Audio) == 0 {
		return Outcome{}, &ValidationError{Reason: "an audio file is required"}
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = "audio.mp3"
	}

	client, err := r.audioClient(cfg)
	if err != nil {
		return Outcome{}, err
	}
	text, err := client.Transcribe(ctx, ai.TranscribeRequest{
		FileName: fileName,
		Audio:    req.Audio,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("transcribe audio: %w", err)
	}

	r.finish(node, node.Operation.Label(),
		fmt.Sprintf("File: %s\n\nTranscript: %s", fileName, text),
		workflow.Payload{"text": text})
	return Outcome{Message: text}, nil
}
