package story

import (
	"context"
	"errors"

	"storysmith/internal/core"
	"storysmith/internal/llm"
	"storysmith/internal/logger"
	"storysmith/internal/prompts"
	"storysmith/internal/quality"
)

// Reviewer scores stories with the model, falling back to the local heuristic.
type Reviewer struct {
	gen       llm.Generator
	evaluator *quality.Evaluator
}

// NewReviewer creates a reviewer. A nil evaluator uses the default thresholds.
func NewReviewer(gen llm.Generator, evaluator *quality.Evaluator) *Reviewer {
	if evaluator == nil {
		evaluator = quality.NewEvaluator()
	}
	return &Reviewer{gen: gen, evaluator: evaluator}
}

// Review asks the model for an INVEST assessment of the story. A reply that cannot be decoded
// yields the heuristic score instead; generation failures are returned as errors.
func (r *Reviewer) Review(ctx context.Context, s core.Story) (*quality.InvestScore, error) {
	reply, err := r.gen.Generate(ctx, prompts.InvestReview(s.Body), nil)
	if err != nil {
		return nil, llm.Classify(err)
	}

	score, err := r.evaluator.ParseReview(reply)
	if errors.Is(err, quality.ErrMalformedReview) {
		logger.Warn("Model review unusable, using heuristic score", "id", s.ID, "error", err.Error())
		return r.evaluator.Evaluate(s), nil
	}
	return score, err
}

// Improvements asks the model for concrete changes to the story.
func (r *Reviewer) Improvements(ctx context.Context, s core.Story) ([]quality.Improvement, error) {
	reply, err := r.gen.Generate(ctx, prompts.Improvements(s.Body), nil)
	if err != nil {
		return nil, llm.Classify(err)
	}
	return r.evaluator.ParseImprovements(reply)
}
