// Package cmd provides the command-line interface for the planbot CLI tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/planbot/internal/config"
	"github.com/danielolaszy/planbot/internal/gemini"
	"github.com/danielolaszy/planbot/internal/github"
	"github.com/danielolaszy/planbot/internal/jira"
	"github.com/danielolaszy/planbot/internal/run"
)

var rootCmd = &cobra.Command{
	Use:   "planbot",
	Short: "Planbot reconciles an implementation plan against an issue tracker",
	Long: `Planbot reads a declarative YAML implementation plan (phases, tasks,
subtasks), compares it against the existing issues of a remote tracker
(GitHub or JIRA), drafts the missing tickets with a generative model or
a deterministic fallback, and creates them via the tracker API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("repository", "r", "", "GitHub repository (e.g., 'owner/repo'), overrides configuration")
}

// loadConfig reads the configuration named by the --config flag and
// applies flag-level overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	repository, err := cmd.Flags().GetString("repository")
	if err != nil {
		return nil, err
	}

	if repository != "" {
		// Flag beats file and environment; the override has to land
		// before validation runs.
		os.Setenv("GITHUB_REPOSITORY", repository)
	}

	return config.LoadConfig(path)
}

// newDirectory creates the issue tracker backend selected by the
// configuration.
func newDirectory(cfg *config.Config) (run.Directory, error) {
	switch cfg.Tracker {
	case config.TrackerJira:
		return jira.NewClient(cfg.Jira)
	default:
		return github.NewClient(cfg.GitHub)
	}
}

// newGenerator creates the generative model client, or an error when the
// synthesis path is not configured.
func newGenerator(cfg *config.Config) (*gemini.Client, error) {
	if err := config.ValidateGeminiConfig(cfg); err != nil {
		return nil, fmt.Errorf("generative model not configured: %w", err)
	}
	return gemini.NewClient(cfg.Gemini)
}
