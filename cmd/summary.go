package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/planbot/internal/plan"
)

// summaryCmd validates the plan document and prints aggregate counts
// without touching the tracker or the model.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Validate the implementation plan and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := plan.Load(cfg.Paths.Plan)
		if err != nil {
			return err
		}

		summary := p.Summarize()

		fmt.Printf("Project: %s\n", summary.ProjectName)
		fmt.Printf("Phases: %d\n", summary.TotalPhases)
		for _, phase := range summary.Phases {
			fmt.Printf("  - %s\n", phase)
		}
		fmt.Printf("Tasks: %d\n", summary.TotalTasks)
		fmt.Printf("Subtasks: %d\n", summary.TotalSubtasks)
		fmt.Printf("Total estimated points: %d\n", summary.TotalEstimatedPoints)
		fmt.Printf("Labels: %s\n", strings.Join(summary.AllLabels, ", "))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
