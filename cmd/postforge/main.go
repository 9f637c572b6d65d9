package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/postforge/postforge/pkg/notify"
	"github.com/postforge/postforge/pkg/server"
	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/social"
	"github.com/postforge/postforge/pkg/workflow"
	"github.com/postforge/postforge/pkg/workflow/executors"

	// Register all AI providers via their init() functions.
	_ "github.com/postforge/postforge/pkg/ai/providers"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "postforge",
		Short: "Postforge — AI content workflow console",
		Long: `Postforge serves the content-generation console API.

Workflows are graphs of AI producer nodes (text, image, speech) wired into
social sink nodes. Running a producer propagates its output one hop to the
nodes it feeds; a sink posts once it has both text and image.`,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(graphCmd())
	return root
}

// ─── serve ────────────────────────────────────────────────────────────────────

func serveCmd() *cobra.Command {
	var (
		addr         string
		settingsPath string
		origins      []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

			svc, err := settings.NewService(settingsPath)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			store := workflow.NewStore()
			log := notify.NewLog()
			runner := executors.NewRunner(store, log, svc)
			srv := server.New(store, log, svc, runner,
				server.WithAllowedOrigins(origins...))

			ctx := signalContext(cmd.Context())

			// Pick up settings edits made outside the console.
			go func() {
				if err := svc.Watch(ctx); err != nil {
					slog.Warn("settings watch stopped", "error", err)
				}
			}()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&settingsPath, "settings", "postforge.json", "path to the brand settings file")
	cmd.Flags().StringSliceVar(&origins, "origin", []string{"*"}, "allowed CORS origins (repeatable)")
	return cmd
}

// ─── verify ───────────────────────────────────────────────────────────────────

func verifyCmd() *cobra.Command {
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the configured Twitter credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := settings.NewService(settingsPath)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			cfg := svc.Current()
			if cfg == nil {
				return fmt.Errorf("no settings found at %s", settingsPath)
			}

			poster, err := social.New(workflow.PlatformTwitter, cfg.SocialAccounts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			username, err := poster.Verify(ctx)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			fmt.Printf("OK: authenticated as @%s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "postforge.json", "path to the brand settings file")
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			fmt.Fprintln(os.Stderr, "\n[postforge] interrupted — shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
