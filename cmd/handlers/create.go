package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/forms"
	"storysmith/internal/llm"
	"storysmith/internal/render"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

// NewCreateCmd creates the create command
func NewCreateCmd() *cobra.Command {
	var (
		formPath  string
		format    string
		outputDir string
		noFile    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a story from a form file",
		Long: `Generate a technical user story from a YAML or JSON form.

The form is validated first; the model is only called for valid forms.
Evidence images listed under fix.images are sent to the model and embedded
in the generated document.

Examples:
  storysmith create --form oauth.yaml
  storysmith create --form checkout-bug.yaml --format html --output ./out
  storysmith create --form spike.yaml --no-file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, cfg *config.Config, repo store.Repository) error {
				return runCreate(ctx, cmd, cfg, repo, formPath, format, outputDir, noFile)
			})
		},
	}

	cmd.Flags().StringVarP(&formPath, "form", "f", "", "path to the form file (YAML or JSON)")
	cmd.Flags().StringVar(&format, "format", "", "export format: md, json, txt or html (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the exported story (default from config)")
	cmd.Flags().BoolVar(&noFile, "no-file", false, "print the story instead of writing it to a file")
	_ = cmd.MarkFlagRequired("form")

	return cmd
}

func runCreate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, repo store.Repository, formPath, format, outputDir string, noFile bool) error {
	out := cmd.OutOrStdout()

	form, err := forms.Load(formPath)
	if err != nil {
		return err
	}
	if valid, problems := story.Validate(form); !valid {
		printProblems(out, problems)
		return story.ErrValidation
	}

	f, err := render.ParseFormat(firstNonEmpty(format, cfg.Output.Format))
	if err != nil {
		return err
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	analytics := newAnalytics(cfg)
	defer analytics.Close()

	fmt.Fprintf(out, "🤖 Gerando história %s: %s\n", form.Category, form.Title)
	start := time.Now()
	created, err := story.NewAssembler(gen, repo).Create(ctx, form)
	if err != nil {
		analytics.TrackGenerationFailed(ctx, form.Category, string(llm.KindOf(err)))
		return errors.New(llm.UserMessage(llm.KindOf(err)))
	}
	analytics.TrackStoryCreated(ctx, *created, time.Since(start))

	content, err := render.Render(*created, f)
	if err != nil {
		return err
	}

	if noFile {
		fmt.Fprintln(out, string(content))
	} else {
		path, err := render.WriteStoryToFile(content, firstNonEmpty(outputDir, cfg.Output.Directory), render.Filename(*created, f))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, okStyle.Render("✓ História salva em "+path))
	}

	score := newEvaluator(cfg).Evaluate(*created)
	fmt.Fprintf(out, "%s %s  INVEST %d/100 (%s)\n", mutedStyle.Render("ID"), created.ID, score.Overall, score.Grade)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
