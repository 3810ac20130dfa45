package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"storysmith/internal/config"
	"storysmith/internal/llm"
	"storysmith/internal/logger"
	"storysmith/internal/observability"
	"storysmith/internal/quality"
	"storysmith/internal/store"
)

// generationMetrics are registered once per process on the default registry, which /metrics serves.
var generationMetrics = sync.OnceValue(func() *llm.Metrics {
	return llm.NewMetrics(prometheus.DefaultRegisterer)
})

// withRepo opens the configured story store for the duration of fn.
func withRepo(ctx context.Context, fn func(context.Context, *config.Config, store.Repository) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repo, err := store.Open(cfg.Store.Driver, cfg.Store.Location())
	if err != nil {
		return fmt.Errorf("failed to open story store: %w", err)
	}
	defer repo.Close()

	return fn(ctx, cfg, repo)
}

// newGenerator builds the instrumented Gemini client described by cfg.
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	gemini := cfg.AI.Gemini
	temperature := gemini.Temperature
	client, err := llm.NewClient(ctx, llm.Options{
		APIKey:      gemini.APIKey,
		Model:       gemini.Model,
		MaxTokens:   gemini.MaxTokens,
		Timeout:     gemini.TimeoutDuration(),
		Temperature: &temperature,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewInstrumented(client, client.Model(), generationMetrics()), nil
}

// newEvaluator applies the scoring section of the configuration to the default thresholds.
func newEvaluator(cfg *config.Config) *quality.Evaluator {
	th := quality.DefaultThresholds()
	th.ExcludeNegotiability = cfg.Scoring.ExcludeNegotiability
	if cfg.Scoring.MaxSuggestions > 0 {
		th.MaxSuggestions = cfg.Scoring.MaxSuggestions
	}
	return quality.NewEvaluatorWithThresholds(th)
}

// newAnalytics returns the configured PostHog client. Analytics are optional, so a broken
// configuration only disables them.
func newAnalytics(cfg *config.Config) *observability.PostHogClient {
	client, err := observability.NewPostHogClient(cfg.Analytics.PostHog)
	if err != nil {
		logger.Warn("Analytics disabled", "error", err.Error())
		return nil
	}
	return client
}
