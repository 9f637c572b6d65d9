// Package ai provides a provider-agnostic client layer for the generation
// operations the console needs: text completion, image generation, speech
// synthesis and audio transcription.
package ai

// Role represents the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TextRequest is the unified input for a text generation call.
type TextRequest struct {
	Prompt      string        `json:"prompt"`
	System      string        `json:"system,omitempty"`
	History     []ChatMessage `json:"history,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ImageRequest is the unified input for an image generation call.
// The result is a URL to the rendered image.
type ImageRequest struct {
	Prompt string `json:"prompt"`
	// Size is a "WxH" string, e.g. "1024x1024".
	Size string `json:"size,omitempty"`
	// Style is provider-specific, e.g. "vivid" or "natural" for DALL-E.
	Style string `json:"style,omitempty"`
}

// SpeechRequest is the unified input for a text-to-speech call.
type SpeechRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// TranscribeRequest is the unified input for a speech-to-text call.
type TranscribeRequest struct {
	// FileName carries the extension the provider uses to sniff the format.
	FileName string `json:"file_name"`
	Audio    []byte `json:"-"`
}
