package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/planbot/internal/config"
	"github.com/danielolaszy/planbot/internal/github"
	"github.com/danielolaszy/planbot/internal/jira"
)

// checkCmd tests tracker and model connectivity without running the
// pipeline.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test tracker and model API connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		failed := false

		if err := checkTracker(cmd, cfg); err != nil {
			fmt.Printf("tracker connection failed: %v\n", err)
			failed = true
		} else {
			fmt.Println("tracker connection ok")
		}

		if err := checkModel(cmd, cfg); err != nil {
			fmt.Printf("model connection failed: %v\n", err)
			failed = true
		} else {
			fmt.Println("model connection ok")
		}

		if failed {
			return fmt.Errorf("one or more connection tests failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkTracker(cmd *cobra.Command, cfg *config.Config) error {
	switch cfg.Tracker {
	case config.TrackerJira:
		client, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return err
		}
		return client.TestConnection(cmd.Context())
	default:
		client, err := github.NewClient(cfg.GitHub)
		if err != nil {
			return err
		}

		fullName, openIssues, err := client.RepositoryInfo(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("repository %s has %d open issues\n", fullName, openIssues)
		return nil
	}
}

func checkModel(cmd *cobra.Command, cfg *config.Config) error {
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	return generator.TestConnection(cmd.Context())
}
