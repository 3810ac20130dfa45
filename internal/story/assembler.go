// Package story orchestrates story creation: prompt building, generation, evidence splicing and
// persistence, plus section regeneration and AI-assisted review.
package story

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"storysmith/internal/core"
	"storysmith/internal/llm"
	"storysmith/internal/logger"
	"storysmith/internal/prompts"
	"storysmith/internal/store"
)

// Assembler turns validated submissions into stored stories.
type Assembler struct {
	gen   llm.Generator
	repo  store.Repository
	clock func() time.Time
}

// NewAssembler creates an assembler. A nil repository is replaced with an in-memory session.
func NewAssembler(gen llm.Generator, repo store.Repository) *Assembler {
	if repo == nil {
		repo = store.NewSession()
	}
	return &Assembler{
		gen:   gen,
		repo:  repo,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// Repository returns the story collection the assembler writes to.
func (a *Assembler) Repository() store.Repository { return a.repo }

// Create generates a story for form and appends it to the repository. Callers validate first;
// Create does not. On failure it returns a nil story and an error whose llm.KindOf names the cause.
func (a *Assembler) Create(ctx context.Context, form core.FormSubmission) (*core.Story, error) {
	form = form.Clean()
	form.Fix.Attachments = usableAttachments(form.Fix.Attachments)
	prompt := prompts.ForCategory(form.Category).Build(form)

	var attachments []core.Attachment
	if form.Category == core.CategoryFix {
		attachments = form.Fix.Attachments
	}

	logger.Info("Generating story",
		"category", string(form.Category),
		"title", form.Title,
		"attachments", len(attachments))

	body, err := a.gen.Generate(ctx, prompt, attachments)
	if err != nil {
		err = llm.Classify(err)
		logger.Error("Story generation failed", err, "kind", string(llm.KindOf(err)))
		return nil, err
	}

	if len(attachments) > 0 {
		body = SpliceImages(body, attachments)
	}

	story := core.NewStory(form, body, a.clock())
	if err := a.repo.Add(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to store story: %w", err)
	}

	logger.Info("Story created", "id", story.ID, "category", string(story.Category))
	return &story, nil
}

// usableAttachments drops attachments without a decodable base64 payload, so the prompt, the request
// and the spliced document all see the same images.
func usableAttachments(attachments []core.Attachment) []core.Attachment {
	if len(attachments) == 0 {
		return nil
	}
	out := make([]core.Attachment, 0, len(attachments))
	for i, a := range attachments {
		if a.Data == "" {
			logger.Warn("Skipping attachment without payload", "index", i, "name", a.Name)
			continue
		}
		if _, err := base64.StdEncoding.DecodeString(a.Data); err != nil {
			logger.Warn("Skipping attachment with invalid payload", "index", i, "name", a.Name, "error", err.Error())
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
