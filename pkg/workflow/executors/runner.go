// Package executors runs workflow nodes: it reads a node's propagated input
// and user-entered fields, calls the external AI or social collaborator, and
// on success records the outcome and propagates it one hop downstream.
package executors

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/postforge/postforge/pkg/ai"
	"github.com/postforge/postforge/pkg/notify"
	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/social"
	"github.com/postforge/postforge/pkg/workflow"
)

// Request carries the fields of a node's action form.
type Request struct {
	Prompt string `json:"prompt,omitempty"`

	// Image generation.
	Size  string `json:"size,omitempty"`
	Style string `json:"style,omitempty"`

	// Speech synthesis.
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`

	// Transcription input.
	FileName string `json:"fileName,omitempty"`
	Audio    []byte `json:"-"`

	// Content decoration toggles, forwarded downstream with the payload.
	IncludeEmojis   bool `json:"includeEmojis,omitempty"`
	IncludeHashtags bool `json:"includeHashtags,omitempty"`
	HashtagCount    int  `json:"hashtagCount,omitempty"`
}

// Outcome is what a successful run hands back to the caller.
type Outcome struct {
	Message string `json:"message,omitempty"`
	Image   string `json:"image,omitempty"`
	PostID  string `json:"postId,omitempty"`
	Audio   []byte `json:"-"`
}

// ClientFactory builds an AI client for a provider and key.
type ClientFactory func(provider, apiKey string) (ai.Client, error)

// PosterFactory builds a social posting client for a platform.
type PosterFactory func(platform workflow.SocialPlatform, accounts settings.SocialAccounts) (social.Poster, error)

// Runner dispatches node runs to the executor for the node's kind and
// operation.
type Runner struct {
	store    *workflow.Store
	log      *notify.Log
	settings settings.Reader

	newClient ClientFactory
	newPoster PosterFactory

	mu      sync.Mutex
	running map[string]bool
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClientFactory overrides how AI clients are constructed.
func WithClientFactory(f ClientFactory) Option {
	return func(r *Runner) { r.newClient = f }
}

// WithPosterFactory overrides how social posting clients are constructed.
func WithPosterFactory(f PosterFactory) Option {
	return func(r *Runner) { r.newPoster = f }
}

// NewRunner wires a Runner to the graph store, result log and settings.
func NewRunner(store *workflow.Store, log *notify.Log, st settings.Reader, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		log:       log,
		settings:  st,
		newClient: ai.NewClient,
		newPoster: social.New,
		running:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Running reports whether a run for the node is currently in flight. It is
// informational only — a second concurrent dispatch is not refused.
func (r *Runner) Running(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running[nodeID]
}

func (r *Runner) setRunning(nodeID string, v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v {
		r.running[nodeID] = true
	} else {
		delete(r.running, nodeID)
	}
}

// Run executes the node's action exactly once: one external call, and on
// success one result-log entry plus one propagation. On failure nothing is
// logged or propagated and the error is returned for the UI to surface.
func (r *Runner) Run(ctx context.Context, nodeID string, req Request) (Outcome, error) {
	node, ok := r.store.NodeByID(nodeID)
	if !ok {
		return Outcome{}, &NotFoundError{NodeID: nodeID}
	}

	r.setRunning(nodeID, true)
	defer r.setRunning(nodeID, false)

	slog.Info("executing node", "node", nodeID, "kind", node.Kind)

	switch node.Kind {
	case workflow.KindAI:
		return r.runAI(ctx, node, req)
	case workflow.KindSocial:
		return r.runSocial(ctx, node)
	}
	return Outcome{}, fmt.Errorf("node %q: unknown kind %q", nodeID, node.Kind)
}

// finish is the shared success path: it re-checks that the node still exists
// (it may have been deleted while the external call was in flight) and only
// then records the result and propagates the payload. A deleted node drops
// the update silently — that is a natural consequence of concurrent edits,
// not a fault.
func (r *Runner) finish(node workflow.Node, label, result string, payload workflow.Payload) {
	if _, ok := r.store.NodeByID(node.ID); !ok {
		slog.Info("node deleted mid-flight, dropping result", "node", node.ID)
		return
	}
	r.log.Add(node.ID, label, result)
	if payload != nil {
		r.store.Propagate(node.ID, payload)
	}
}

// currentSettings returns the configuration snapshot or a ConfigError.
func (r *Runner) currentSettings() (*settings.BrandConfig, error) {
	cfg := r.settings.Current()
	if cfg == nil {
		return nil, &ConfigError{Reason: "settings are not configured yet"}
	}
	return cfg, nil
}

// textClient resolves the configured text provider and its key.
func (r *Runner) textClient(cfg *settings.BrandConfig) (ai.Client, error) {
	provider := cfg.TextProvider
	if provider == "" {
		provider = settings.ProviderOpenAI
	}
	key := cfg.APIKeys.ForProvider(provider)
	if key == "" {
		return nil, &ConfigError{Reason: fmt.Sprintf("%s API key is not configured", provider)}
	}
	return r.newClient(provider, key)
}

// imageClient resolves the configured image provider and its key.
func (r *Runner) imageClient(cfg *settings.BrandConfig) (ai.Client, error) {
	provider := cfg.ImageProvider
	if provider == "" {
		provider = settings.ProviderOpenAI
	}
	key := cfg.APIKeys.ForProvider(provider)
	if key == "" {
		return nil, &ConfigError{Reason: fmt.Sprintf("%s API key is not configured", provider)}
	}
	return r.newClient(provider, key)
}

// audioClient resolves the provider for speech operations. Only openai
// implements them today.
func (r *Runner) audioClient(cfg *settings.BrandConfig) (ai.Client, error) {
	key := cfg.APIKeys.OpenAI
	if key == "" {
		return nil, &ConfigError{Reason: "openai API key is not configured"}
	}
	return r.newClient(settings.ProviderOpenAI, key)
}
