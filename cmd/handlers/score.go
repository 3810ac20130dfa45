package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/llm"
	"storysmith/internal/quality"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

// NewScoreCmd creates the score command
func NewScoreCmd() *cobra.Command {
	var (
		useAI        bool
		all          bool
		improvements bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "score [id]",
		Short: "Assess stories against INVEST",
		Long: `Score a story on the six INVEST dimensions.

The default assessment is a local heuristic that needs no API key.
--ai asks the model instead and falls back to the heuristic when its
answer cannot be read. --all audits every stored story.

Examples:
  storysmith score 1a2b3c4d
  storysmith score 1a2b3c4d --ai --improvements
  storysmith score --all`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				evaluator := newEvaluator(cfg)
				out := cmd.OutOrStdout()

				if all {
					stories, err := repo.List(ctx)
					if err != nil {
						return err
					}
					report := evaluator.Audit(stories)
					if asJSON {
						return printJSON(out, report)
					}
					if len(stories) == 0 {
						fmt.Fprintln(out, report.Recommendation)
						return nil
					}
					printAudit(out, stories, report)
					return nil
				}

				s, err := store.Resolve(ctx, repo, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}

				var (
					score *quality.InvestScore
					fixes []quality.Improvement
				)
				if useAI || improvements {
					gen, err := newGenerator(ctx, cfg)
					if err != nil {
						return err
					}
					reviewer := story.NewReviewer(gen, evaluator)
					if useAI {
						if score, err = reviewer.Review(ctx, s); err != nil {
							return errors.New(llm.UserMessage(llm.KindOf(err)))
						}
					}
					if improvements {
						if fixes, err = reviewer.Improvements(ctx, s); err != nil {
							return fmt.Errorf("failed to get improvements: %w", err)
						}
					}
				}
				if score == nil {
					score = evaluator.Evaluate(s)
				}
				analytics := newAnalytics(cfg)
				analytics.TrackStoryScored(ctx, s.ID, score.Source, score.Overall)
				_ = analytics.Close()

				if asJSON {
					return printJSON(out, map[string]any{"score": score, "improvements": fixes})
				}
				printScore(out, s, score)
				printImprovements(cmd, fixes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", false, "ask the model for the assessment")
	cmd.Flags().BoolVar(&all, "all", false, "audit every stored story with the heuristic")
	cmd.Flags().BoolVar(&improvements, "improvements", false, "ask the model for concrete improvements")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assessment as JSON")

	return cmd
}

func printImprovements(cmd *cobra.Command, items []quality.Improvement) {
	if len(items) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("\nMelhorias propostas:"))
	for _, it := range items {
		marker := warnStyle.Render("•")
		if it.Applicable {
			marker = okStyle.Render("•")
		}
		fmt.Fprintf(out, "%s [%s/%s] %s\n    → %s\n", marker, it.Type, it.Severity, it.Problem, it.Suggestion)
	}
}
