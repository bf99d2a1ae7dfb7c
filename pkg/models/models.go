// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Ticket represents an existing issue fetched from the remote tracker.
// The tracker owns the record; what we hold is a transient snapshot that
// may already be stale by the time it is read.
type Ticket struct {
	// ID is the tracker's internal identifier for the issue.
	ID int64

	// Number is the human-facing issue number (e.g., 42).
	Number int

	// Title is the issue's title or summary.
	Title string

	// Body is the full body text of the issue.
	Body string

	// State is "open" or "closed".
	State string

	// Labels is a slice of label names attached to the issue.
	Labels []string

	// Milestone is the milestone title, empty if unset.
	Milestone string

	// Assignees is a slice of assignee login names.
	Assignees []string

	// CreatedAt is the timestamp when the issue was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the issue was last updated.
	UpdatedAt time.Time
}

// TicketDraft is a candidate issue that has not been created yet. Drafts
// are produced by the synthesizer (or the deterministic fallback),
// validated, and discarded after one creation attempt regardless of
// outcome.
type TicketDraft struct {
	// Title is the proposed issue title.
	Title string `json:"title" yaml:"title"`

	// Body is the proposed issue body.
	Body string `json:"body" yaml:"body"`

	// Labels is the optional set of label names to attach.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Milestone is the optional milestone title.
	Milestone string `json:"milestone,omitempty" yaml:"milestone,omitempty"`

	// Assignees is the optional set of assignee login names.
	Assignees []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`
}
