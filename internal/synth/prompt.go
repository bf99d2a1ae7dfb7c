package synth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/pkg/models"

	"gopkg.in/yaml.v3"
)

// promptIssue is the slimmed issue view embedded in prompts. Bodies are
// left out: titles and labels are what the model needs to avoid
// duplicating existing work, and bodies blow up the prompt size.
type promptIssue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	State  string   `json:"state"`
	Labels []string `json:"labels,omitempty"`
}

// BuildPrompt serializes the plan (YAML) and the existing issue snapshot
// (JSON) into the user template's placeholders and prepends the system
// instructions.
func BuildPrompt(p *plan.Plan, existing []models.Ticket, tmpl Template) (string, error) {
	planYAML, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize plan: %w", err)
	}

	issues := make([]promptIssue, 0, len(existing))
	for _, ticket := range existing {
		issues = append(issues, promptIssue{
			Number: ticket.Number,
			Title:  ticket.Title,
			State:  ticket.State,
			Labels: ticket.Labels,
		})
	}

	issuesJSON, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize existing issues: %w", err)
	}

	userPrompt := strings.ReplaceAll(tmpl.UserPromptTemplate, PlaceholderPlan, string(planYAML))
	userPrompt = strings.ReplaceAll(userPrompt, PlaceholderIssues, string(issuesJSON))

	return tmpl.SystemPrompt + "\n\n" + userPrompt, nil
}
