package ai

import (
	"context"
	"fmt"
	"sync"
)

// Client is the provider-agnostic generation interface. Providers that do not
// support an operation return an *UnsupportedError from it.
type Client interface {
	// GenerateText performs a blocking completion and returns the full text.
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	// GenerateImage renders an image and returns its URL.
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
	// Synthesize converts text to spoken audio (MP3 bytes).
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
	// Transcribe converts spoken audio to text.
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// Factory creates a Client for a provider given the user's API key.
type Factory func(apiKey string) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// RegisterProvider registers a factory for a named provider.
// Call this from init() in provider packages.
func RegisterProvider(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewClient constructs a Client for the named provider using the given key.
func NewClient(provider, apiKey string) (Client, error) {
	registryMu.RLock()
	factory, ok := registry[provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered for %q — did you import the providers package?", provider)
	}
	if apiKey == "" {
		return nil, &AuthError{ProviderError{Message: fmt.Sprintf("%s: API key is not configured", provider)}}
	}
	return factory(apiKey)
}
