package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/store"
	"storysmith/internal/tui"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stored stories in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				stories, err := repo.List(ctx)
				if err != nil {
					return err
				}
				return tui.Run(stories, newEvaluator(cfg))
			})
		},
	}
}
