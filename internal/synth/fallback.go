package synth

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/pkg/models"
)

// fallbackBody is the fixed body template used for model-free drafts.
// Everything in it is derived from the subtask, so identical input
// always yields byte-identical output.
const fallbackBody = `This subtask belongs to:
- Phase: %s
- Task: %s

Objective:
%s

Estimated Story Points: %d
Labels: %s
Complexity: %s

Acceptance Criteria:
- [ ] Complete the described functionality
- [ ] Ensure code quality and documentation
- [ ] Test the implementation
- [ ] Update any related documentation`

// Complexity buckets a subtask's estimated points into low, medium or
// high.
func Complexity(points int) string {
	switch {
	case points <= 2:
		return "low"
	case points <= 5:
		return "medium"
	default:
		return "high"
	}
}

// FallbackDraft builds a deterministic ticket draft from a subtask
// without involving the model. Used in dry-run and degraded modes.
func FallbackDraft(subtask plan.Subtask) models.TicketDraft {
	body := fmt.Sprintf(fallbackBody,
		subtask.PhaseName,
		subtask.TaskName,
		subtask.Description,
		subtask.EstimatedPoints,
		strings.Join(subtask.Labels, ", "),
		Complexity(subtask.EstimatedPoints))

	return models.TicketDraft{
		Title:     subtask.Name,
		Body:      body,
		Labels:    subtask.Labels,
		Milestone: subtask.PhaseName,
	}
}
