// Package observability sends opt-in product analytics about story generation to PostHog.
package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/posthog/posthog-go"

	"storysmith/internal/config"
	"storysmith/internal/core"
	"storysmith/internal/logger"
)

// distinctID attributes events to the installation rather than to a person; no user data is sent.
const distinctID = "storysmith"

// EventProperties contains properties for an event
type EventProperties map[string]any

// PostHogClient wraps the PostHog SDK for product analytics. A nil or disabled client accepts every
// call and sends nothing.
type PostHogClient struct {
	client  posthog.Client
	enabled bool
}

// NewPostHogClient creates a new PostHog analytics client
func NewPostHogClient(cfg config.PostHogConfig) (*PostHogClient, error) {
	if !cfg.Enabled {
		return &PostHogClient{enabled: false}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{client: client, enabled: true}, nil
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture queues an event for PostHog
func (p *PostHogClient) Capture(ctx context.Context, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	return p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	})
}

// TrackStoryCreated records a generated story. Titles and bodies are never sent.
func (p *PostHogClient) TrackStoryCreated(ctx context.Context, s core.Story, duration time.Duration) {
	p.track(ctx, "story_created", EventProperties{
		"story_id":    s.ID,
		"category":    string(s.Category),
		"complexity":  s.Complexity,
		"attachments": len(s.Fix.Attachments),
		"duration_ms": duration.Milliseconds(),
	})
}

// TrackGenerationFailed records a failed generation by error kind.
func (p *PostHogClient) TrackGenerationFailed(ctx context.Context, category core.Category, kind string) {
	p.track(ctx, "generation_failed", EventProperties{
		"category": string(category),
		"kind":     kind,
	})
}

// TrackSectionRegenerated records a section rewrite.
func (p *PostHogClient) TrackSectionRegenerated(ctx context.Context, storyID, section string) {
	p.track(ctx, "section_regenerated", EventProperties{
		"story_id": storyID,
		"section":  section,
	})
}

// TrackStoryScored records an INVEST assessment.
func (p *PostHogClient) TrackStoryScored(ctx context.Context, storyID, source string, overall int) {
	p.track(ctx, "story_scored", EventProperties{
		"story_id": storyID,
		"source":   source,
		"overall":  overall,
	})
}

// TrackStoryExported records an export.
func (p *PostHogClient) TrackStoryExported(ctx context.Context, storyID, format string) {
	p.track(ctx, "story_exported", EventProperties{
		"story_id": storyID,
		"format":   format,
	})
}

// track logs instead of failing; analytics never break a request.
func (p *PostHogClient) track(ctx context.Context, event string, properties EventProperties) {
	if err := p.Capture(ctx, event, properties); err != nil {
		logger.Warn("Failed to queue analytics event", "event", event, "error", err.Error())
	}
}

// Close flushes queued events and releases the client.
func (p *PostHogClient) Close() error {
	if !p.IsEnabled() {
		return nil
	}
	return p.client.Close()
}
