/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storysmith/internal/config"
	"storysmith/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storysmith",
		Short: "Generate technical user stories with Gemini",
		Long: `Storysmith turns a structured form into a technical user story.

Four categories are supported:
  • business  Feature work with rules, integrations and acceptance criteria
  • spike     Time-boxed research with a question and success criteria
  • kaizen    Process improvement with current state, goal and metrics
  • fix       Defect report with reproduction steps and evidence images

Stories are kept in a local SQLite database and can be scored against
INVEST, have single sections regenerated, and be exported as Markdown,
JSON, plain text or HTML.

Examples:
  # Check a form without calling the model
  storysmith validate --form oauth.yaml

  # Generate a story and write it to ./stories
  storysmith create --form oauth.yaml

  # Rewrite the acceptance criteria of a stored story
  storysmith regenerate 1a2b3c4d --section criteria

  # Serve the JSON API
  storysmith serve --port 8080`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storysmith.yaml)")

	rootCmd.AddCommand(NewCreateCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewScoreCmd())
	rootCmd.AddCommand(NewRegenerateCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewDeleteCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("❌ "+err.Error()))
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
}
