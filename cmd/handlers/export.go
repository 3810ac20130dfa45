package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/render"
	"storysmith/internal/store"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		format    string
		outputDir string
		stdout    bool
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored story",
		Long: `Export a stored story as Markdown, JSON, plain text or HTML.

Examples:
  storysmith export 1a2b3c4d --format html
  storysmith export 1a2b3c4d --format txt --stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				s, err := store.Resolve(ctx, repo, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				f, err := render.ParseFormat(firstNonEmpty(format, cfg.Output.Format))
				if err != nil {
					return err
				}
				content, err := render.Render(s, f)
				if err != nil {
					return err
				}

				analytics := newAnalytics(cfg)
				analytics.TrackStoryExported(ctx, s.ID, string(f))
				defer analytics.Close()

				out := cmd.OutOrStdout()
				if stdout {
					_, err := out.Write(content)
					return err
				}
				path, err := render.WriteStoryToFile(content, firstNonEmpty(outputDir, cfg.Output.Directory), render.Filename(s, f))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, okStyle.Render("✓ Exported to "+path))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "md, json, txt or html (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write to standard output instead of a file")

	return cmd
}
