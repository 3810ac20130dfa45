package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/core"
	"storysmith/internal/cost"
	"storysmith/internal/forms"
	"storysmith/internal/prompts"
	"storysmith/internal/story"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var (
		formPath string
		estimate bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a form file without generating a story",
		Long: `Check a form file without calling the model.

--estimate also prints the projected token usage and cost of generating it.

Examples:
  storysmith validate --form oauth.yaml
  storysmith validate --form checkout-bug.yaml --estimate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := forms.Load(formPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if valid, problems := story.Validate(form); !valid {
				printProblems(out, problems)
				return story.ErrValidation
			}
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ Formulário %s válido: %s", form.Category, form.Title)))

			if estimate {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				form = form.Clean()
				images := 0
				if form.Category == core.CategoryFix {
					images = len(form.Fix.Attachments)
				}
				e := cost.EstimateRequest(cfg.AI.Gemini.Model, prompts.Build(form), images)
				fmt.Fprintln(out, mutedStyle.Render("💰 "+e.String()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formPath, "form", "f", "", "path to the form file (YAML or JSON)")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "print the projected cost of generating the story")
	_ = cmd.MarkFlagRequired("form")

	return cmd
}
