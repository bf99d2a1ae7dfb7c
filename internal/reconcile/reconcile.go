// Package reconcile computes which plan subtasks lack a corresponding
// tracker issue.
package reconcile

import (
	"strings"

	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/pkg/models"
)

// Matcher decides whether a subtask name and an issue title refer to the
// same unit of work. The call sites only depend on this interface so a
// stricter policy (exact normalized equality, edit distance) can be
// substituted without touching them.
type Matcher interface {
	Matches(subtaskName, ticketTitle string) bool
}

// ContainsMatcher is the default matching policy: case-insensitive
// bidirectional substring containment on trimmed titles. Deliberately
// permissive: it tolerates an issue title being a superset or subset of
// a subtask name, at the cost of conflating unrelated items that share a
// common substring.
type ContainsMatcher struct{}

// Matches reports whether either normalized title contains the other.
func (ContainsMatcher) Matches(subtaskName, ticketTitle string) bool {
	a := normalize(subtaskName)
	b := normalize(ticketTitle)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Diff returns the subtasks that have no matching ticket in existing,
// preserving the input subtask order. A nil matcher falls back to
// ContainsMatcher.
func Diff(subtasks []plan.Subtask, existing []models.Ticket, matcher Matcher) []plan.Subtask {
	if matcher == nil {
		matcher = ContainsMatcher{}
	}

	missing := make([]plan.Subtask, 0, len(subtasks))

	for _, subtask := range subtasks {
		tracked := false
		for _, ticket := range existing {
			if matcher.Matches(subtask.Name, ticket.Title) {
				tracked = true
				logging.Debug("subtask already tracked",
					"subtask", subtask.Name,
					"issue_number", ticket.Number,
					"issue_title", ticket.Title)
				break
			}
		}

		if !tracked {
			missing = append(missing, subtask)
		}
	}

	logging.Info("reconciliation complete",
		"subtasks", len(subtasks),
		"existing_issues", len(existing),
		"missing", len(missing))

	return missing
}
