package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlan = `
project: Example Service
phases:
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: Create config
            description: Add the initial configuration file.
            estimated_points: 2
            labels: [setup, config]
          - name: Write docs
            description: Document the setup process.
            estimated_points: 1
            labels: [docs]
  - name: Build
    tasks:
      - name: API
        subtasks:
          - name: Implement health endpoint
            description: Expose a health endpoint.
            estimated_points: 6
            labels: [api, setup]
`

func TestParseValidPlan(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	assert.Equal(t, "Example Service", p.Name)
	require.Len(t, p.Phases, 2)
	assert.Equal(t, "Setup", p.Phases[0].Name)
	require.Len(t, p.Phases[0].Tasks, 1)
	assert.Len(t, p.Phases[0].Tasks[0].Subtasks, 2)
}

func TestParseMalformedPlan(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing project field",
			doc: `
phases: []
`,
		},
		{
			name: "missing phases field",
			doc: `
project: Example
`,
		},
		{
			name: "phases not a sequence",
			doc: `
project: Example
phases: not-a-list
`,
		},
		{
			name: "phase missing name",
			doc: `
project: Example
phases:
  - tasks: []
`,
		},
		{
			name: "phase missing tasks",
			doc: `
project: Example
phases:
  - name: Setup
`,
		},
		{
			name: "tasks not a sequence",
			doc: `
project: Example
phases:
  - name: Setup
    tasks: nope
`,
		},
		{
			name: "task missing subtasks",
			doc: `
project: Example
phases:
  - name: Setup
    tasks:
      - name: Init
`,
		},
		{
			name: "subtask missing description",
			doc: `
project: Example
phases:
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: Create config
            estimated_points: 2
            labels: [setup]
`,
		},
		{
			name: "subtask missing estimated_points",
			doc: `
project: Example
phases:
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: Create config
            description: x
            labels: [setup]
`,
		},
		{
			name: "labels is a scalar",
			doc: `
project: Example
phases:
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: Create config
            description: x
            estimated_points: 2
            labels: setup
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			assert.Nil(t, p, "no partial plan may be returned")
			assert.ErrorIs(t, err, ErrMalformedPlan)
		})
	}
}

func TestParseEmptyPhasesIsLegal(t *testing.T) {
	p, err := Parse([]byte("project: Example\nphases: []\n"))
	require.NoError(t, err)
	assert.Empty(t, p.Flatten())
}

func TestFlattenOrderAndDenormalization(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	subtasks := p.Flatten()
	require.Len(t, subtasks, 3)

	assert.Equal(t, "Create config", subtasks[0].Name)
	assert.Equal(t, "Write docs", subtasks[1].Name)
	assert.Equal(t, "Implement health endpoint", subtasks[2].Name)

	assert.Equal(t, "Setup", subtasks[0].PhaseName)
	assert.Equal(t, "Init", subtasks[0].TaskName)
	assert.Equal(t, "Build", subtasks[2].PhaseName)
	assert.Equal(t, "API", subtasks[2].TaskName)
}

func TestFlattenIsDeterministic(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	assert.Equal(t, p.Flatten(), p.Flatten())
}

func TestSummarize(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	summary := p.Summarize()
	assert.Equal(t, "Example Service", summary.ProjectName)
	assert.Equal(t, 2, summary.TotalPhases)
	assert.Equal(t, 2, summary.TotalTasks)
	assert.Equal(t, 3, summary.TotalSubtasks)
	assert.Equal(t, 9, summary.TotalEstimatedPoints)
	assert.Equal(t, []string{"Setup", "Build"}, summary.Phases)
	assert.Equal(t, []string{"api", "config", "docs", "setup"}, summary.AllLabels)
}

func TestLookups(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	subtask, ok := p.FindSubtask("Write docs")
	require.True(t, ok)
	assert.Equal(t, "Setup", subtask.PhaseName)

	_, ok = p.FindSubtask("does not exist")
	assert.False(t, ok)

	assert.Len(t, p.SubtasksByPhase("Setup"), 2)
	assert.Empty(t, p.SubtasksByPhase("Unknown"))

	assert.Len(t, p.SubtasksByTask("API"), 1)

	byLabel := p.SubtasksByLabel("setup")
	require.Len(t, byLabel, 2)
	assert.Equal(t, "Create config", byLabel[0].Name)
	assert.Equal(t, "Implement health endpoint", byLabel[1].Name)
}

func TestDuplicatePhaseNamesAreProcessedIndependently(t *testing.T) {
	doc := `
project: Example
phases:
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: First
            description: a
            estimated_points: 1
            labels: []
  - name: Setup
    tasks:
      - name: Init
        subtasks:
          - name: Second
            description: b
            estimated_points: 1
            labels: []
`
	p, err := Parse([]byte(doc))
	require.NoError(t, err)

	subtasks := p.Flatten()
	require.Len(t, subtasks, 2)
	assert.Equal(t, "First", subtasks[0].Name)
	assert.Equal(t, "Second", subtasks[1].Name)
}
