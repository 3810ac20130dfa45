package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storysmith/internal/core"
	"storysmith/internal/cost"
	"storysmith/internal/logger"
)

// Metrics holds the generation counters exported on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	spend    prometheus.Counter
}

// NewMetrics registers the generation metrics with reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storysmith_generation_requests_total",
			Help: "Generation requests by outcome (ok or error kind).",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "storysmith_generation_duration_seconds",
			Help:    "Latency of generation requests.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}),
		spend: f.NewCounter(prometheus.CounterOpts{
			Name: "storysmith_generation_estimated_cost_usd_total",
			Help: "Estimated spend of successful generation requests.",
		}),
	}
}

// Instrumented wraps a Generator with request logging and metrics.
type Instrumented struct {
	next    Generator
	model   string
	metrics *Metrics
}

// NewInstrumented wraps next. metrics may be nil, in which case only logging happens.
func NewInstrumented(next Generator, model string, metrics *Metrics) *Instrumented {
	return &Instrumented{next: next, model: model, metrics: metrics}
}

// Generate implements Generator.
func (g *Instrumented) Generate(ctx context.Context, prompt string, attachments []core.Attachment) (string, error) {
	startTime := time.Now()
	logger.Debug("Generation started", "model", g.model, "prompt_chars", len(prompt), "attachments", len(attachments))

	text, err := g.next.Generate(ctx, prompt, attachments)

	elapsed := time.Since(startTime)
	outcome := "ok"
	var usage cost.Estimate
	if err != nil {
		err = Classify(err)
		outcome = string(KindOf(err))
		logger.Error("Generation failed", err, "model", g.model, "kind", outcome, "latency_ms", elapsed.Milliseconds())
	} else {
		usage = cost.EstimateUsage(g.model, prompt, text, len(attachments))
		logger.Info("Generation completed", "model", g.model, "latency_ms", elapsed.Milliseconds(),
			"estimated_tokens", usage.InputTokens+usage.OutputTokens,
			"estimated_cost_usd", usage.TotalCost)
	}

	if g.metrics != nil {
		g.metrics.requests.WithLabelValues(outcome).Inc()
		g.metrics.duration.Observe(elapsed.Seconds())
		g.metrics.spend.Add(usage.TotalCost)
	}
	return text, err
}
