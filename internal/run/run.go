// Package run sequences reconciliation, ticket synthesis and issue
// creation into a single pipeline pass.
package run

import (
	"context"
	"fmt"

	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/internal/reconcile"
	"github.com/danielolaszy/planbot/internal/synth"
	"github.com/danielolaszy/planbot/pkg/models"
)

// DefaultMaxNewTickets caps how many drafts a single run may create when
// no limit is configured.
const DefaultMaxNewTickets = 10

// Directory is the issue tracker contract the pipeline consumes.
type Directory interface {
	// FetchIssues returns a snapshot of the tracker's issues in the
	// given state ("open", "closed" or "all").
	FetchIssues(ctx context.Context, state string) ([]models.Ticket, error)

	// CreateIssue persists a validated draft as a new issue.
	CreateIssue(ctx context.Context, draft models.TicketDraft) (models.Ticket, error)

	// AddToBoard attaches a created issue to a project board. Best
	// effort: failures never abort the run.
	AddToBoard(ctx context.Context, ticketID int64, boardID int64) error
}

// TicketSynthesizer drafts tickets for the plan given the existing issue
// snapshot.
type TicketSynthesizer interface {
	Synthesize(ctx context.Context, p *plan.Plan, existing []models.Ticket) (synth.Batch, error)
}

// Options controls a single pipeline run.
type Options struct {
	// DryRun suppresses all remote mutation; the result still reports
	// what would have been created.
	DryRun bool

	// MaxNewTickets caps drafts per run; zero means DefaultMaxNewTickets.
	MaxNewTickets int

	// IncludeClosedIssues widens the reconciliation snapshot to closed
	// issues as well.
	IncludeClosedIssues bool

	// BoardColumnID attaches created issues to this project board
	// column when non-zero.
	BoardColumnID int64

	// Matcher overrides the title matching policy; nil uses the default
	// bidirectional containment matcher.
	Matcher reconcile.Matcher
}

// CreationFailure records one draft that could not be created.
type CreationFailure struct {
	Title string
	Err   error
}

// Result enumerates everything a run did (or, in dry-run, would do).
type Result struct {
	ProjectName    string
	TotalSubtasks  int
	AlreadyTracked []plan.Subtask
	Missing        []plan.Subtask
	Drafted        []models.TicketDraft
	Rejected       int
	Created        []models.Ticket
	Failures       []CreationFailure
	DryRun         bool
}

// Run executes one reconciliation pass: flatten the plan, snapshot the
// tracker, diff, draft the missing tickets, and create them one at a
// time. Per-item creation failures are recorded and skipped; only
// structural failures (plan, snapshot fetch) abort the run. There is no
// rollback: the tracker is the source of truth and partial creation is
// an acceptable outcome.
func Run(ctx context.Context, p *plan.Plan, dir Directory, synthesizer TicketSynthesizer, opts Options) (*Result, error) {
	subtasks := p.Flatten()

	state := "open"
	if opts.IncludeClosedIssues {
		state = "all"
	}

	existing, err := dir.FetchIssues(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing issues: %w", err)
	}

	missing := reconcile.Diff(subtasks, existing, opts.Matcher)

	result := &Result{
		ProjectName:    p.Name,
		TotalSubtasks:  len(subtasks),
		AlreadyTracked: trackedSubset(subtasks, missing),
		Missing:        missing,
		DryRun:         opts.DryRun,
	}

	if len(missing) == 0 {
		logging.Info("all subtasks already tracked", "subtasks", len(subtasks))
		return result, nil
	}

	max := opts.MaxNewTickets
	if max <= 0 {
		max = DefaultMaxNewTickets
	}

	batch := draftTickets(ctx, p, existing, missing, synthesizer, opts.DryRun)
	if len(batch.Drafts) > max {
		logging.Warn("capping drafts at configured maximum",
			"drafted", len(batch.Drafts),
			"max", max)
		batch.Drafts = batch.Drafts[:max]
	}

	result.Drafted = batch.Drafts
	result.Rejected = batch.Rejected

	if opts.DryRun {
		for _, draft := range batch.Drafts {
			logging.Info("dry run: would create issue",
				"title", draft.Title,
				"labels", draft.Labels,
				"milestone", draft.Milestone)
		}
		return result, nil
	}

	for _, draft := range batch.Drafts {
		ticket, err := dir.CreateIssue(ctx, draft)
		if err != nil {
			logging.Error("issue creation failed, continuing with next draft",
				"title", draft.Title,
				"error", err)
			result.Failures = append(result.Failures, CreationFailure{Title: draft.Title, Err: err})
			continue
		}

		result.Created = append(result.Created, ticket)

		if opts.BoardColumnID != 0 {
			if err := dir.AddToBoard(ctx, ticket.ID, opts.BoardColumnID); err != nil {
				logging.Warn("failed to add issue to project board",
					"title", ticket.Title,
					"error", err)
			}
		}
	}

	logging.Info("run complete",
		"already_tracked", len(result.AlreadyTracked),
		"drafted", len(result.Drafted),
		"rejected", result.Rejected,
		"created", len(result.Created),
		"failed", len(result.Failures))

	return result, nil
}

// draftTickets produces the draft batch for the missing subtasks. The
// model path drafts from the whole plan in one call; dry-run and
// degraded (no synthesizer) modes build one deterministic fallback draft
// per missing subtask. A model failure degrades to an empty batch rather
// than aborting the run.
func draftTickets(ctx context.Context, p *plan.Plan, existing []models.Ticket, missing []plan.Subtask, synthesizer TicketSynthesizer, dryRun bool) synth.Batch {
	if dryRun || synthesizer == nil {
		var batch synth.Batch
		for _, subtask := range missing {
			batch.Drafts = append(batch.Drafts, synth.FallbackDraft(subtask))
		}
		return batch
	}

	batch, err := synthesizer.Synthesize(ctx, p, existing)
	if err != nil {
		logging.Error("ticket synthesis failed, continuing with empty batch", "error", err)
		return synth.Batch{}
	}
	return batch
}

// trackedSubset returns the subtasks that are not in missing. Diff
// preserves input order, so missing is an ordered subsequence of
// subtasks and a single walk suffices.
func trackedSubset(subtasks, missing []plan.Subtask) []plan.Subtask {
	tracked := make([]plan.Subtask, 0, len(subtasks)-len(missing))
	next := 0
	for _, subtask := range subtasks {
		if next < len(missing) && missing[next].Name == subtask.Name && missing[next].PhaseName == subtask.PhaseName && missing[next].TaskName == subtask.TaskName {
			next++
			continue
		}
		tracked = append(tracked, subtask)
	}
	return tracked
}
