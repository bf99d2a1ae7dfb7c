package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/planbot/internal/plan"
)

// fakeGenerator returns a canned response or error.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testTemplate() Template {
	return Template{
		SystemPrompt:       "You draft tickets.",
		UserPromptTemplate: "{implementation_plan}\n{existing_issues}",
	}
}

func testPlan() *plan.Plan {
	return &plan.Plan{
		Name: "Example",
		Phases: []plan.Phase{
			{Name: "Setup", Tasks: []plan.Task{
				{Name: "Init", Subtasks: []plan.Subtask{
					{Name: "Write docs", Description: "d", EstimatedPoints: 1, Labels: []string{"docs"}},
				}},
			}},
		},
	}
}

func TestSynthesizeParsesModelResponse(t *testing.T) {
	generator := &fakeGenerator{
		response: "Here are the tickets:\n[{\"title\":\"Write docs\",\"body\":\"Document it.\"}]",
	}
	s := NewSynthesizer(generator, testTemplate())

	batch, err := s.Synthesize(context.Background(), testPlan(), nil)
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, "Write docs", batch.Drafts[0].Title)
	require.Len(t, generator.prompts, 1, "exactly one model call, no retries")
}

func TestSynthesizeModelFailure(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("boom")}
	s := NewSynthesizer(generator, testTemplate())

	_, err := s.Synthesize(context.Background(), testPlan(), nil)
	assert.Error(t, err)
}

func TestSynthesizeUnparseableResponseYieldsEmptyBatch(t *testing.T) {
	generator := &fakeGenerator{response: "I'm sorry, I can't produce JSON today."}
	s := NewSynthesizer(generator, testTemplate())

	batch, err := s.Synthesize(context.Background(), testPlan(), nil)
	require.NoError(t, err, "unparseable output degrades to an empty batch, not a failure")
	assert.Empty(t, batch.Drafts)
}
