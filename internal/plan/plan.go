// Package plan parses and queries declarative implementation plans.
//
// A plan is a YAML document describing a project as ordered phases,
// each phase holding ordered tasks, each task holding ordered subtasks.
// The subtask is the unit of work reconciled against tracker issues.
package plan

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrMalformedPlan indicates the plan document violates the required
// structure. Parsing is all-or-nothing: no partial plan is ever returned.
var ErrMalformedPlan = errors.New("malformed implementation plan")

// Plan is the in-memory representation of an implementation plan.
type Plan struct {
	Name   string  `yaml:"project"`
	Phases []Phase `yaml:"phases"`
}

// Phase groups related tasks. Phase names are not required to be unique;
// duplicates are processed independently.
type Phase struct {
	Name  string `yaml:"name"`
	Tasks []Task `yaml:"tasks"`
}

// Task groups related subtasks.
type Task struct {
	Name     string    `yaml:"name"`
	Subtasks []Subtask `yaml:"subtasks"`
}

// Subtask is the leaf unit of planned work. PhaseName and TaskName are
// denormalized onto the subtask at flattening time; a Subtask is a
// projection recomputed on every Flatten call, never cached.
type Subtask struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	EstimatedPoints int      `yaml:"estimated_points"`
	Labels          []string `yaml:"labels"`
	PhaseName       string   `yaml:"-"`
	TaskName        string   `yaml:"-"`
}

// Summary holds aggregate counts over a plan.
type Summary struct {
	ProjectName          string
	TotalPhases          int
	TotalTasks           int
	TotalSubtasks        int
	TotalEstimatedPoints int
	Phases               []string
	AllLabels            []string
}

// rawPlan mirrors the document loosely so structural violations can be
// reported precisely instead of surfacing as YAML type errors.
type rawPlan struct {
	Project *string   `yaml:"project"`
	Phases  yaml.Node `yaml:"phases"`
}

type rawPhase struct {
	Name  *string   `yaml:"name"`
	Tasks yaml.Node `yaml:"tasks"`
}

type rawTask struct {
	Name     *string   `yaml:"name"`
	Subtasks yaml.Node `yaml:"subtasks"`
}

type rawSubtask struct {
	Name            *string   `yaml:"name"`
	Description     *string   `yaml:"description"`
	EstimatedPoints *int      `yaml:"estimated_points"`
	Labels          yaml.Node `yaml:"labels"`
}

// Parse deserializes and validates a plan document. Validation is eager
// and exhaustive: the whole document is checked before any subtask is
// returned, and the first violation aborts with ErrMalformedPlan.
func Parse(data []byte) (*Plan, error) {
	var raw rawPlan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid yaml: %v", ErrMalformedPlan, err)
	}

	if raw.Project == nil {
		return nil, fmt.Errorf("%w: missing required 'project' field", ErrMalformedPlan)
	}
	if raw.Phases.IsZero() {
		return nil, fmt.Errorf("%w: missing required 'phases' field", ErrMalformedPlan)
	}
	if raw.Phases.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: 'phases' must be a sequence", ErrMalformedPlan)
	}

	p := &Plan{Name: *raw.Project}

	for i, phaseNode := range raw.Phases.Content {
		phase, err := parsePhase(phaseNode, i)
		if err != nil {
			return nil, err
		}
		p.Phases = append(p.Phases, phase)
	}

	return p, nil
}

func parsePhase(node *yaml.Node, index int) (Phase, error) {
	var raw rawPhase
	if node.Kind != yaml.MappingNode {
		return Phase{}, fmt.Errorf("%w: phase %d must be a mapping", ErrMalformedPlan, index)
	}
	if err := node.Decode(&raw); err != nil {
		return Phase{}, fmt.Errorf("%w: phase %d is invalid: %v", ErrMalformedPlan, index, err)
	}

	if raw.Name == nil {
		return Phase{}, fmt.Errorf("%w: phase %d missing 'name'", ErrMalformedPlan, index)
	}
	if raw.Tasks.IsZero() {
		return Phase{}, fmt.Errorf("%w: phase %d missing 'tasks'", ErrMalformedPlan, index)
	}
	if raw.Tasks.Kind != yaml.SequenceNode {
		return Phase{}, fmt.Errorf("%w: 'tasks' in phase %d must be a sequence", ErrMalformedPlan, index)
	}

	phase := Phase{Name: *raw.Name}

	for j, taskNode := range raw.Tasks.Content {
		task, err := parseTask(taskNode, index, j)
		if err != nil {
			return Phase{}, err
		}
		phase.Tasks = append(phase.Tasks, task)
	}

	return phase, nil
}

func parseTask(node *yaml.Node, phaseIndex, index int) (Task, error) {
	var raw rawTask
	if node.Kind != yaml.MappingNode {
		return Task{}, fmt.Errorf("%w: task %d in phase %d must be a mapping", ErrMalformedPlan, index, phaseIndex)
	}
	if err := node.Decode(&raw); err != nil {
		return Task{}, fmt.Errorf("%w: task %d in phase %d is invalid: %v", ErrMalformedPlan, index, phaseIndex, err)
	}

	if raw.Name == nil {
		return Task{}, fmt.Errorf("%w: task %d in phase %d missing 'name'", ErrMalformedPlan, index, phaseIndex)
	}
	if raw.Subtasks.IsZero() {
		return Task{}, fmt.Errorf("%w: task %d in phase %d missing 'subtasks'", ErrMalformedPlan, index, phaseIndex)
	}
	if raw.Subtasks.Kind != yaml.SequenceNode {
		return Task{}, fmt.Errorf("%w: 'subtasks' in task %d of phase %d must be a sequence", ErrMalformedPlan, index, phaseIndex)
	}

	task := Task{Name: *raw.Name}

	for k, subtaskNode := range raw.Subtasks.Content {
		subtask, err := parseSubtask(subtaskNode, phaseIndex, index, k)
		if err != nil {
			return Task{}, err
		}
		task.Subtasks = append(task.Subtasks, subtask)
	}

	return task, nil
}

func parseSubtask(node *yaml.Node, phaseIndex, taskIndex, index int) (Subtask, error) {
	at := fmt.Sprintf("subtask %d in task %d of phase %d", index, taskIndex, phaseIndex)

	var raw rawSubtask
	if node.Kind != yaml.MappingNode {
		return Subtask{}, fmt.Errorf("%w: %s must be a mapping", ErrMalformedPlan, at)
	}
	if err := node.Decode(&raw); err != nil {
		return Subtask{}, fmt.Errorf("%w: %s is invalid: %v", ErrMalformedPlan, at, err)
	}

	if raw.Name == nil {
		return Subtask{}, fmt.Errorf("%w: %s missing 'name'", ErrMalformedPlan, at)
	}
	if raw.Description == nil {
		return Subtask{}, fmt.Errorf("%w: %s missing 'description'", ErrMalformedPlan, at)
	}
	if raw.EstimatedPoints == nil {
		return Subtask{}, fmt.Errorf("%w: %s missing 'estimated_points'", ErrMalformedPlan, at)
	}
	if raw.Labels.IsZero() {
		return Subtask{}, fmt.Errorf("%w: %s missing 'labels'", ErrMalformedPlan, at)
	}
	if raw.Labels.Kind != yaml.SequenceNode {
		return Subtask{}, fmt.Errorf("%w: 'labels' in %s must be a sequence", ErrMalformedPlan, at)
	}

	var labels []string
	if err := raw.Labels.Decode(&labels); err != nil {
		return Subtask{}, fmt.Errorf("%w: 'labels' in %s must be a sequence of strings", ErrMalformedPlan, at)
	}

	return Subtask{
		Name:            *raw.Name,
		Description:     *raw.Description,
		EstimatedPoints: *raw.EstimatedPoints,
		Labels:          labels,
	}, nil
}

// Load reads and parses a plan document from disk.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Flatten returns every subtask in depth-first source order, with
// PhaseName and TaskName denormalized onto each. Pure function, safe to
// call repeatedly; the result is recomputed on every call.
func (p *Plan) Flatten() []Subtask {
	var subtasks []Subtask

	for _, phase := range p.Phases {
		for _, task := range phase.Tasks {
			for _, subtask := range task.Subtasks {
				subtask.PhaseName = phase.Name
				subtask.TaskName = task.Name
				subtasks = append(subtasks, subtask)
			}
		}
	}

	return subtasks
}

// Summarize computes aggregate counts over the plan.
func (p *Plan) Summarize() Summary {
	subtasks := p.Flatten()

	summary := Summary{
		ProjectName:   p.Name,
		TotalPhases:   len(p.Phases),
		TotalSubtasks: len(subtasks),
	}

	for _, phase := range p.Phases {
		summary.TotalTasks += len(phase.Tasks)
		summary.Phases = append(summary.Phases, phase.Name)
	}

	seen := make(map[string]bool)
	for _, subtask := range subtasks {
		summary.TotalEstimatedPoints += subtask.EstimatedPoints
		for _, label := range subtask.Labels {
			if !seen[label] {
				seen[label] = true
				summary.AllLabels = append(summary.AllLabels, label)
			}
		}
	}
	sort.Strings(summary.AllLabels)

	return summary
}

// FindSubtask returns the first subtask with the exact given name, or
// false if no subtask matches.
func (p *Plan) FindSubtask(name string) (Subtask, bool) {
	for _, subtask := range p.Flatten() {
		if subtask.Name == name {
			return subtask, true
		}
	}
	return Subtask{}, false
}

// SubtasksByPhase returns all subtasks belonging to the named phase.
func (p *Plan) SubtasksByPhase(phaseName string) []Subtask {
	return p.filter(func(s Subtask) bool { return s.PhaseName == phaseName })
}

// SubtasksByTask returns all subtasks belonging to the named task.
func (p *Plan) SubtasksByTask(taskName string) []Subtask {
	return p.filter(func(s Subtask) bool { return s.TaskName == taskName })
}

// SubtasksByLabel returns all subtasks carrying the given label.
func (p *Plan) SubtasksByLabel(label string) []Subtask {
	return p.filter(func(s Subtask) bool {
		for _, l := range s.Labels {
			if l == label {
				return true
			}
		}
		return false
	})
}

func (p *Plan) filter(keep func(Subtask) bool) []Subtask {
	var result []Subtask
	for _, subtask := range p.Flatten() {
		if keep(subtask) {
			result = append(result, subtask)
		}
	}
	return result
}
