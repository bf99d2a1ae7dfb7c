package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/pkg/models"
)

// ErrUnparseable indicates the model response does not contain a
// decodable JSON array of ticket objects.
var ErrUnparseable = errors.New("unparseable model response")

// Candidate is a decoded but not yet validated ticket object from a
// model response. Labels is untyped because models occasionally emit a
// scalar where a list is expected, and that must fail validation rather
// than abort decoding of the whole batch.
type Candidate struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    any      `json:"labels"`
	Milestone string   `json:"milestone"`
	Assignees []string `json:"assignees"`
}

// Valid reports whether the candidate can become a ticket draft: title
// and body must be non-empty after trimming, and labels, when present,
// must be a sequence.
func (c Candidate) Valid() bool {
	if strings.TrimSpace(c.Title) == "" {
		return false
	}
	if strings.TrimSpace(c.Body) == "" {
		return false
	}
	if c.Labels != nil {
		if _, ok := c.Labels.([]any); !ok {
			return false
		}
	}
	return true
}

// Draft converts a valid candidate into a ticket draft. Label entries
// that are not strings are skipped.
func (c Candidate) Draft() models.TicketDraft {
	draft := models.TicketDraft{
		Title:     strings.TrimSpace(c.Title),
		Body:      strings.TrimSpace(c.Body),
		Milestone: c.Milestone,
		Assignees: c.Assignees,
	}

	if labels, ok := c.Labels.([]any); ok {
		for _, label := range labels {
			if s, ok := label.(string); ok {
				draft.Labels = append(draft.Labels, s)
			}
		}
	}

	return draft
}

// Batch is the outcome of one synthesis pass: the drafts that survived
// validation and the count of candidates dropped by it.
type Batch struct {
	Drafts   []models.TicketDraft
	Rejected int
}

// ExtractDrafts parses a raw model response for an embedded JSON array
// of ticket objects. The array is located by taking the substring from
// the first '[' to the last ']', which tolerates the model wrapping the
// array in explanatory prose. Individual candidates that fail to decode
// or validate are dropped and logged; a missing or undecodable array
// returns ErrUnparseable.
func ExtractDrafts(raw string) (Batch, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return Batch{}, fmt.Errorf("%w: no JSON array found in response", ErrUnparseable)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &elements); err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	batch := Batch{Drafts: make([]models.TicketDraft, 0, len(elements))}
	for i, element := range elements {
		var candidate Candidate
		if err := json.Unmarshal(element, &candidate); err != nil {
			logging.Warn("dropping undecodable ticket candidate", "index", i, "error", err)
			batch.Rejected++
			continue
		}
		if !candidate.Valid() {
			logging.Warn("dropping invalid ticket candidate", "index", i, "title", candidate.Title)
			batch.Rejected++
			continue
		}
		batch.Drafts = append(batch.Drafts, candidate.Draft())
	}

	logging.Info("parsed ticket drafts from model response",
		"candidates", len(elements),
		"valid", len(batch.Drafts),
		"rejected", batch.Rejected)

	return batch, nil
}
