package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/core"
	"storysmith/internal/store"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored stories",
		Long: `List stored stories in creation order.

Examples:
  storysmith list
  storysmith list --category fix
  storysmith list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, _ *config.Config, repo store.Repository) error {
				stories, err := repo.List(ctx)
				if err != nil {
					return err
				}
				if category != "" {
					c, err := core.ParseCategory(category)
					if err != nil {
						return err
					}
					stories = filterCategory(stories, c)
				}

				out := cmd.OutOrStdout()
				if asJSON {
					records := make([]map[string]any, 0, len(stories))
					for _, s := range stories {
						records = append(records, s.Record())
					}
					return printJSON(out, records)
				}
				if len(stories) == 0 {
					fmt.Fprintln(out, "No stories found")
					fmt.Fprintln(out, mutedStyle.Render("💡 Use 'storysmith create --form <file>' to generate one"))
					return nil
				}
				printStories(out, stories)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list stories of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func filterCategory(stories []core.Story, c core.Category) []core.Story {
	var out []core.Story
	for _, s := range stories {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the generated document of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, _ *config.Config, repo store.Repository) error {
				s, err := store.Resolve(ctx, repo, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), s.Body)
				return nil
			})
		},
	}
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a story from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, _ *config.Config, repo store.Repository) error {
				s, err := store.Resolve(ctx, repo, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if err := repo.Delete(ctx, s.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ Deleted "+s.ID))
				return nil
			})
		},
	}
}
