package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/internal/run"
	"github.com/danielolaszy/planbot/internal/synth"
)

// syncCmd runs the full pipeline: parse plan, snapshot the tracker, diff,
// draft and create the missing tickets.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create tracker issues for plan subtasks that lack one",
	Long: `Synchronize the implementation plan with the issue tracker.

The plan is flattened into subtasks and each subtask is matched against
the tracker's existing issue titles (case-insensitive bidirectional
substring containment). Subtasks without a match are drafted into new
tickets, either by the configured generative model or, with --dry-run or
--no-llm, by a deterministic template, and created one at a time.
Individual creation failures are logged and skipped; the run always
completes and reports a tally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}
		noLLM, err := cmd.Flags().GetBool("no-llm")
		if err != nil {
			return err
		}
		maxTickets, err := cmd.Flags().GetInt("max-tickets")
		if err != nil {
			return err
		}
		includeClosed, err := cmd.Flags().GetBool("include-closed")
		if err != nil {
			return err
		}

		dryRun = dryRun || cfg.Bot.DryRun
		if maxTickets == 0 {
			maxTickets = cfg.Bot.MaxNewTickets
		}
		includeClosed = includeClosed || cfg.Bot.IncludeClosedIssues

		p, err := plan.Load(cfg.Paths.Plan)
		if err != nil {
			return err
		}

		summary := p.Summarize()
		logging.Info("implementation plan loaded",
			"project", summary.ProjectName,
			"phases", summary.TotalPhases,
			"tasks", summary.TotalTasks,
			"subtasks", summary.TotalSubtasks,
			"estimated_points", summary.TotalEstimatedPoints)

		directory, err := newDirectory(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize tracker client: %w", err)
		}

		// Synthesis needs the model and a valid template; both are
		// fatal here and irrelevant for dry-run and --no-llm.
		var synthesizer run.TicketSynthesizer
		if !dryRun && !noLLM {
			generator, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			template, err := synth.LoadTemplate(cfg.Paths.PromptTemplate)
			if err != nil {
				return err
			}

			synthesizer = synth.NewSynthesizer(generator, template)
		}

		result, err := run.Run(cmd.Context(), p, directory, synthesizer, run.Options{
			DryRun:              dryRun,
			MaxNewTickets:       maxTickets,
			IncludeClosedIssues: includeClosed,
			BoardColumnID:       cfg.GitHub.ProjectColumnID,
		})
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("dry-run", false, "Compute and report without creating any issues")
	syncCmd.Flags().Bool("no-llm", false, "Draft tickets deterministically instead of calling the model")
	syncCmd.Flags().Int("max-tickets", 0, "Maximum issues to create per run (0 uses configuration)")
	syncCmd.Flags().Bool("include-closed", false, "Match subtasks against closed issues as well")
}

// printResult writes the run tally to stdout.
func printResult(result *run.Result) {
	fmt.Printf("Project: %s\n", result.ProjectName)
	fmt.Printf("Subtasks: %d total, %d already tracked, %d missing\n",
		result.TotalSubtasks, len(result.AlreadyTracked), len(result.Missing))

	if len(result.Missing) == 0 {
		fmt.Println("All subtasks already have corresponding issues.")
		return
	}

	fmt.Printf("Drafts: %d accepted, %d rejected by validation\n", len(result.Drafted), result.Rejected)

	if result.DryRun {
		fmt.Println("Dry run: the following issues would be created:")
		for i, draft := range result.Drafted {
			fmt.Printf("  %d. %s\n", i+1, draft.Title)
			if len(draft.Labels) > 0 {
				fmt.Printf("     Labels: %s\n", strings.Join(draft.Labels, ", "))
			}
			if draft.Milestone != "" {
				fmt.Printf("     Milestone: %s\n", draft.Milestone)
			}
		}
		return
	}

	fmt.Printf("Created: %d issues\n", len(result.Created))
	for _, ticket := range result.Created {
		fmt.Printf("  #%d %s\n", ticket.Number, ticket.Title)
	}

	if len(result.Failures) > 0 {
		fmt.Printf("Failed: %d issues\n", len(result.Failures))
		for _, failure := range result.Failures {
			fmt.Printf("  %s: %v\n", failure.Title, failure.Err)
		}
	}
}
