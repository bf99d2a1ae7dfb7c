package synth

import (
	"context"
	"fmt"

	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/internal/plan"
	"github.com/danielolaszy/planbot/pkg/models"
)

// Generator is the generative model contract the synthesizer consumes:
// one blocking request-response call, no streaming.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer drafts tickets for missing subtasks by prompting a
// generative model. It carries no retry logic; a failed call surfaces as
// an error for the caller to recover from.
type Synthesizer struct {
	generator Generator
	template  Template
}

// NewSynthesizer creates a Synthesizer using the given model and a
// template that has already passed validation.
func NewSynthesizer(generator Generator, template Template) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		template:  template,
	}
}

// Synthesize builds the prompt, performs a single model call and parses
// the response into validated ticket drafts. A model failure is returned
// as an error; an unparseable response is logged and yields an empty
// batch, since partial output from the model is not distinguishable from
// prose and the run should continue either way.
func (s *Synthesizer) Synthesize(ctx context.Context, p *plan.Plan, existing []models.Ticket) (Batch, error) {
	prompt, err := BuildPrompt(p, existing, s.template)
	if err != nil {
		return Batch{}, err
	}

	logging.Debug("sending synthesis prompt to model", "prompt_length", len(prompt))

	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Batch{}, fmt.Errorf("model call failed: %w", err)
	}

	batch, err := ExtractDrafts(response)
	if err != nil {
		logging.Error("model response not parseable, continuing with empty batch",
			"error", err,
			"response_length", len(response))
		return Batch{}, nil
	}

	return batch, nil
}
