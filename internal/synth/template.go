// Package synth produces ticket drafts for missing subtasks, either by
// prompting a generative model or through a deterministic fallback.
package synth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTemplate indicates the prompt template document is missing a
// required section or substitution placeholder.
var ErrInvalidTemplate = errors.New("invalid prompt template")

// Substitution placeholders the user prompt template must contain.
const (
	PlaceholderPlan   = "{implementation_plan}"
	PlaceholderIssues = "{existing_issues}"
)

// Template is the two-part prompt template: system instructions plus a
// user section carrying the serialized plan and issue snapshot.
type Template struct {
	SystemPrompt       string `yaml:"system_prompt"`
	UserPromptTemplate string `yaml:"user_prompt_template"`
}

// ParseTemplate deserializes and validates a prompt template document.
func ParseTemplate(data []byte) (Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("%w: invalid yaml: %v", ErrInvalidTemplate, err)
	}

	if strings.TrimSpace(tmpl.SystemPrompt) == "" {
		return Template{}, fmt.Errorf("%w: missing 'system_prompt' section", ErrInvalidTemplate)
	}
	if strings.TrimSpace(tmpl.UserPromptTemplate) == "" {
		return Template{}, fmt.Errorf("%w: missing 'user_prompt_template' section", ErrInvalidTemplate)
	}
	if !strings.Contains(tmpl.UserPromptTemplate, PlaceholderPlan) {
		return Template{}, fmt.Errorf("%w: user prompt template missing %s placeholder", ErrInvalidTemplate, PlaceholderPlan)
	}
	if !strings.Contains(tmpl.UserPromptTemplate, PlaceholderIssues) {
		return Template{}, fmt.Errorf("%w: user prompt template missing %s placeholder", ErrInvalidTemplate, PlaceholderIssues)
	}

	return tmpl, nil
}

// LoadTemplate reads and parses a prompt template from disk.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read prompt template: %w", err)
	}
	return ParseTemplate(data)
}
