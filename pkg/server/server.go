// Package server exposes the console's HTTP API: AI provider proxy routes,
// social posting, settings, and the workflow graph operations.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/postforge/postforge/pkg/ai"
	"github.com/postforge/postforge/pkg/notify"
	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/social"
	"github.com/postforge/postforge/pkg/workflow"
	"github.com/postforge/postforge/pkg/workflow/executors"
)

// downloadAllowedHosts are the image hosts the download proxy will fetch
// from. DALL-E result URLs live on the OpenAI blob host.
var downloadAllowedHosts = map[string]bool{
	"oaidalleapiprodscus.blob.core.windows.net": true,
}

// Server wires the console API to the graph store, result log, settings and
// node runner.
type Server struct {
	store    *workflow.Store
	log      *notify.Log
	settings *settings.Service
	runner   *executors.Runner
	validate *validator.Validate

	allowedOrigins []string

	// Factories, overridable in tests.
	newClient executors.ClientFactory
	newPoster executors.PosterFactory
	fetch     *http.Client
}

// Option customizes a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origin allowlist.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// New builds a Server around its collaborators.
func New(store *workflow.Store, log *notify.Log, svc *settings.Service, runner *executors.Runner, opts ...Option) *Server {
	s := &Server{
		store:          store,
		log:            log,
		settings:       svc,
		runner:         runner,
		validate:       validator.New(),
		allowedOrigins: []string{"*"},
		newClient:      ai.NewClient,
		newPoster:      social.New,
		fetch:          &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/generate-blog", s.handleGenerateBlog)
		r.Post("/generate-images", s.handleGenerateImages)
		r.Post("/chat", s.handleChat)
		r.Post("/speech", s.handleSpeech)
		r.Get("/download", s.handleDownload)

		r.Post("/social/post", s.handleSocialPost)
		r.Get("/social/twitter/verify", s.handleTwitterVerify)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", s.handleGetWorkflow)
			r.Get("/export", s.handleExportWorkflow)
			r.Post("/changes", s.handleApplyChanges)
			r.Put("/selection", s.handleSetSelection)
			r.Post("/nodes", s.handleAddNode)
			r.Delete("/nodes/{id}", s.handleDeleteNode)
			r.Patch("/nodes/{id}", s.handlePatchNode)
			r.Get("/nodes/{id}/connections", s.handleNodeConnections)
			r.Post("/nodes/{id}/run", s.handleRunNode)
			r.Post("/edges", s.handleConnect)
			r.Delete("/edges/{id}", s.handleDisconnect)
		})

		r.Get("/notifications", s.handleListNotifications)
		r.Delete("/notifications", s.handleClearNotifications)
		r.Delete("/notifications/{id}", s.handleRemoveNotification)
	})
	return r
}

// ListenAndServe runs the API until ctx is cancelled, then drains with a
// short grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("console API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// textClientFor resolves the text provider and key from current settings.
func (s *Server) textClientFor(provider string) (ai.Client, error) {
	cfg := s.settings.Current()
	if cfg == nil {
		return nil, errConfig("settings are not configured yet")
	}
	if provider == "" {
		provider = cfg.TextProvider
	}
	if provider == "" {
		provider = settings.ProviderOpenAI
	}
	key := cfg.APIKeys.ForProvider(provider)
	if key == "" {
		return nil, errConfig(fmt.Sprintf("%s API key is not configured", provider))
	}
	return s.newClient(provider, key)
}

// imageClientFor resolves the image provider and key from current settings.
func (s *Server) imageClientFor() (ai.Client, error) {
	cfg := s.settings.Current()
	if cfg == nil {
		return nil, errConfig("settings are not configured yet")
	}
	provider := cfg.ImageProvider
	if provider == "" {
		provider = settings.ProviderOpenAI
	}
	key := cfg.APIKeys.ForProvider(provider)
	if key == "" {
		// DALL-E rides on the openai key even when another image provider
		// is selected but unconfigured.
		key = cfg.APIKeys.OpenAI
		provider = settings.ProviderOpenAI
	}
	if key == "" {
		return nil, errConfig("image provider API key is not configured")
	}
	return s.newClient(provider, key)
}

// errConfig builds the executor-level configuration error so the response
// mapping treats proxy-route and node-run failures uniformly.
func errConfig(reason string) error {
	return &executors.ConfigError{Reason: reason}
}

var errBadJSON = errors.New("invalid JSON body")
