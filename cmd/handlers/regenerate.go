package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/llm"
	"storysmith/internal/prompts"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

// NewRegenerateCmd creates the regenerate command
func NewRegenerateCmd() *cobra.Command {
	var (
		section string
		show    bool
	)

	cmd := &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Rewrite one section of a stored story",
		Long: fmt.Sprintf(`Ask the model for a fresh version of one section and store the result.
The rest of the document is left as it was.

Sections: %s

Examples:
  storysmith regenerate 1a2b3c4d --section criteria
  storysmith regenerate 1a2b3c4d --section test-scenarios --show`, strings.Join(prompts.SectionIDs(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				if _, ok := prompts.SectionLabel(section); !ok {
					return fmt.Errorf("%w: %q (expected one of %s)", story.ErrUnknownSection, section, strings.Join(prompts.SectionIDs(), ", "))
				}
				gen, err := newGenerator(ctx, cfg)
				if err != nil {
					return err
				}

				updated, err := story.NewAssembler(gen, repo).ApplyRegeneration(ctx, args[0], section)
				switch {
				case err == nil:
				case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrAmbiguous):
					return fmt.Errorf("%s: %w", args[0], err)
				default:
					var ge *llm.GenerationError
					if errors.As(err, &ge) {
						return errors.New(llm.UserMessage(ge.Kind))
					}
					return err
				}

				analytics := newAnalytics(cfg)
				analytics.TrackSectionRegenerated(ctx, updated.ID, section)
				_ = analytics.Close()

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ Seção %s regenerada em %s", section, updated.ID)))
				if show {
					fmt.Fprintln(out, updated.Body)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", prompts.SectionCriteria, "section to regenerate")
	cmd.Flags().BoolVar(&show, "show", false, "print the updated document")

	return cmd
}
