package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/logger"
	"storysmith/internal/server"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long: `Start the storysmith HTTP server.

The server provides:
  • POST /api/stories and /api/stories/validate for generation
  • Scoring, section regeneration and export per stored story
  • /health and Prometheus /metrics endpoints

Examples:
  # Start server on default port 8080
  storysmith serve

  # Listen on all interfaces
  storysmith serve --host 0.0.0.0 --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				return runServe(ctx, cfg, repo, port, host)
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, repo store.Repository, port int, host string) error {
	log := logger.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	evaluator := newEvaluator(cfg)
	analytics := newAnalytics(cfg)
	defer analytics.Close()

	srv := server.New(serverCfg, server.Deps{
		Assembler: story.NewAssembler(gen, repo),
		Reviewer:  story.NewReviewer(gen, evaluator),
		Evaluator: evaluator,
		Gatherer:  prometheus.DefaultGatherer,
		Analytics: analytics,
	})

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().Msgf("Server listening on http://%s", serverCfg.Addr())
		log.Info().Msg("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info().Msg("Server stopped successfully")
	}

	return nil
}
