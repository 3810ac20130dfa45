package story

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storysmith/internal/core"
	"storysmith/internal/document"
	"storysmith/internal/llm"
	"storysmith/internal/logger"
	"storysmith/internal/prompts"
	"storysmith/internal/store"
)

// ErrUnknownSection is returned for a section id the regenerator does not know.
var ErrUnknownSection = errors.New("unknown section")

// Regenerate asks the model for a fresh version of one section of original. It returns only the
// replacement section text; original is not modified.
func (a *Assembler) Regenerate(ctx context.Context, sectionID, original string, form core.FormSubmission) (string, error) {
	label, ok := prompts.SectionLabelFor(sectionID, form.Category)
	if !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownSection, sectionID, strings.Join(prompts.SectionIDs(), ", "))
	}

	logger.Info("Regenerating section", "section", sectionID, "title", form.Title)
	text, err := a.gen.Generate(ctx, prompts.Regeneration(label, original, form), nil)
	if err != nil {
		err = llm.Classify(err)
		logger.Error("Section regeneration failed", err, "kind", string(llm.KindOf(err)))
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ApplyRegeneration regenerates one section of a stored story and writes the rewritten document
// back. A section missing from the document is appended.
func (a *Assembler) ApplyRegeneration(ctx context.Context, id, sectionID string) (core.Story, error) {
	s, err := store.Resolve(ctx, a.repo, id)
	if err != nil {
		return core.Story{}, err
	}

	section, err := a.Regenerate(ctx, sectionID, s.Body, s.Form())
	if err != nil {
		return core.Story{}, err
	}

	label, _ := prompts.SectionLabelFor(sectionID, s.Category)
	body := document.ReplaceSection(s.Body, label, section)
	updated, err := a.repo.UpdateBody(ctx, s.ID, body, a.clock())
	if err != nil {
		return core.Story{}, fmt.Errorf("failed to store regenerated story: %w", err)
	}
	return updated, nil
}
