// Package workflow owns the content-workflow graph: typed nodes, directed
// edges, derived connection queries and one-hop data propagation.
package workflow

import (
	"fmt"
	"time"
)

// Kind is the closed set of node kinds.
type Kind string

const (
	// KindAI nodes run an AI operation and produce output for downstream nodes.
	KindAI Kind = "ai"
	// KindSocial nodes are platform sinks that publish materialized content.
	KindSocial Kind = "social"
)

// AIOperation identifies the work an AI node performs.
type AIOperation string

const (
	OpTextToText        AIOperation = "text-to-text"
	OpTextToSpeech      AIOperation = "text-to-speech"
	OpTextToImage       AIOperation = "text-to-image"
	OpTextToVideo       AIOperation = "text-to-video"
	OpImageToVideo      AIOperation = "image-to-video"
	OpSpeechToText      AIOperation = "speech-to-text"
	OpTextToMusic       AIOperation = "text-to-music"
	OpAudioCleaner      AIOperation = "audio-cleaner"
	OpBackgroundRemover AIOperation = "background-remover"
	OpImageResizer      AIOperation = "image-resizer"
)

var operationLabels = map[AIOperation]string{
	OpTextToText:        "Text to Text",
	OpTextToSpeech:      "Text to Speech",
	OpTextToImage:       "Text to Image",
	OpTextToVideo:       "Text to Video",
	OpImageToVideo:      "Image to Video",
	OpSpeechToText:      "Speech to Text",
	OpTextToMusic:       "Text to Music",
	OpAudioCleaner:      "Audio Cleaner",
	OpBackgroundRemover: "Background Remover",
	OpImageResizer:      "Image Resizer",
}

// Label returns the human-readable name of the operation.
func (op AIOperation) Label() string {
	if l, ok := operationLabels[op]; ok {
		return l
	}
	return string(op)
}

// Valid reports whether op is one of the known operations.
func (op AIOperation) Valid() bool {
	_, ok := operationLabels[op]
	return ok
}

// SocialPlatform identifies the sink platform of a social node.
type SocialPlatform string

const (
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformLinkedIn  SocialPlatform = "linkedin"
)

var platformLabels = map[SocialPlatform]string{
	PlatformTwitter:   "Twitter",
	PlatformInstagram: "Instagram",
	PlatformFacebook:  "Facebook",
	PlatformLinkedIn:  "LinkedIn",
}

// Label returns the human-readable name of the platform.
func (p SocialPlatform) Label() string {
	if l, ok := platformLabels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether p is one of the known platforms.
func (p SocialPlatform) Valid() bool {
	_, ok := platformLabels[p]
	return ok
}

// Position is the node's canvas placement. It carries no semantics beyond
// keeping freshly added nodes from stacking on top of each other.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Payload is the structured data a producer node pushes downstream.
// Recognized keys: "text", "image", "prompt", "audio", "includeEmojis",
// "includeHashtags", "hashtagCount".
type Payload map[string]any

// Text returns the "text" value, or "" when absent or not a string.
func (p Payload) Text() string { return p.str("text") }

// Image returns the "image" value, or "" when absent or not a string.
func (p Payload) Image() string { return p.str("image") }

// Prompt returns the "prompt" value, or "" when absent or not a string.
func (p Payload) Prompt() string { return p.str("prompt") }

func (p Payload) str(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Clone returns an independent shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// NodeData holds the mutable business fields of a node.
type NodeData struct {
	Label string `json:"label"`
	// InputData is the slot the propagation engine writes into.
	InputData Payload `json:"inputData,omitempty"`
	// Content and Image are set on a social node once both parts of a post
	// have arrived from upstream producers.
	Content string `json:"content,omitempty"`
	Image   string `json:"image,omitempty"`
}

// DataPatch is a shallow merge applied to NodeData. Nil fields are left
// untouched; a non-nil InputData replaces the slot wholesale.
type DataPatch struct {
	Label     *string `json:"label,omitempty"`
	InputData Payload `json:"inputData,omitempty"`
	Content   *string `json:"content,omitempty"`
	Image     *string `json:"image,omitempty"`
}

// Node is a vertex in the workflow graph: either an AI operation or a
// social-platform sink.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Position Position `json:"position"`
	Selected bool     `json:"selected,omitempty"`
	Data     NodeData `json:"data"`

	// Operation is set when Kind == KindAI.
	Operation AIOperation `json:"operation,omitempty"`
	// Platform is set when Kind == KindSocial.
	Platform SocialPlatform `json:"platform,omitempty"`
}

// NewAINode builds an AI node with a timestamp-derived unique ID.
func NewAINode(op AIOperation) *Node {
	return &Node{
		ID:        fmt.Sprintf("%s-%d", KindAI, time.Now().UnixMilli()),
		Kind:      KindAI,
		Operation: op,
		Data:      NodeData{Label: op.Label()},
	}
}

// NewSocialNode builds a social sink node with a timestamp-derived unique ID.
func NewSocialNode(platform SocialPlatform) *Node {
	return &Node{
		ID:       fmt.Sprintf("%s-%d", KindSocial, time.Now().UnixMilli()),
		Kind:     KindSocial,
		Platform: platform,
		Data:     NodeData{Label: platform.Label()},
	}
}

// clone returns a deep copy so callers never alias store-owned state.
func (n *Node) clone() Node {
	out := *n
	out.Data.InputData = n.Data.InputData.Clone()
	return out
}

// Edge is a directed connection: data flows source → target.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}
