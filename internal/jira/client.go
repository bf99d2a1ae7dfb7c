// Package jira provides an issue tracker backend backed by the JIRA API.
package jira

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/planbot/internal/config"
	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/pkg/models"
)

// Client handles interactions with the JIRA API for a single project.
type Client struct {
	client     *jira.Client
	projectKey string
}

// NewClient creates a new JIRA client from configuration.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Token == "" {
		return nil, fmt.Errorf("jira url, username and token are required")
	}
	if cfg.ProjectKey == "" {
		return nil, fmt.Errorf("jira project key is required")
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Info("jira configuration",
		"url", cfg.URL,
		"project", cfg.ProjectKey,
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{client: client, projectKey: cfg.ProjectKey}, nil
}

// TestConnection verifies credentials by fetching the authenticated user.
func (c *Client) TestConnection(ctx context.Context) error {
	user, _, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return fmt.Errorf("error testing jira credentials: %w", err)
	}

	logging.Info("jira authentication successful", "user", user.DisplayName)
	return nil
}

// FetchIssues retrieves issues from the project in the given state
// ("open", "closed" or "all") and converts them to our internal model.
func (c *Client) FetchIssues(ctx context.Context, state string) ([]models.Ticket, error) {
	jql := fmt.Sprintf("project = %q ORDER BY created ASC", c.projectKey)
	switch state {
	case "open":
		jql = fmt.Sprintf("project = %q AND statusCategory != Done ORDER BY created ASC", c.projectKey)
	case "closed":
		jql = fmt.Sprintf("project = %q AND statusCategory = Done ORDER BY created ASC", c.projectKey)
	}

	var result []models.Ticket
	opts := &jira.SearchOptions{MaxResults: 100}

	for {
		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			logging.Error("failed to search jira issues", "jql", jql, "error", err)
			return nil, fmt.Errorf("failed to fetch JIRA issues: %w", err)
		}

		for i := range issues {
			result = append(result, toTicket(&issues[i]))
		}

		opts.StartAt += len(issues)
		if opts.StartAt >= resp.Total || len(issues) == 0 {
			break
		}
	}

	logging.Debug("fetched jira issues", "state", state, "count", len(result))
	return result, nil
}

// CreateIssue creates a JIRA issue from a validated draft. Labels map to
// JIRA labels; the draft milestone has no JIRA equivalent at this level
// and is recorded in the description instead.
func (c *Client) CreateIssue(ctx context.Context, draft models.TicketDraft) (models.Ticket, error) {
	description := draft.Body
	if draft.Milestone != "" {
		description = fmt.Sprintf("%s\n\n----\nPlanned milestone: %s", draft.Body, draft.Milestone)
	}

	fields := &jira.IssueFields{
		Project: jira.Project{
			Key: c.projectKey,
		},
		Summary:     draft.Title,
		Description: description,
		Type: jira.IssueType{
			Name: "Task",
		},
		Labels: draft.Labels,
	}

	created, _, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		logging.Error("failed to create jira issue", "title", draft.Title, "error", err)
		return models.Ticket{}, fmt.Errorf("failed to create JIRA issue %q: %w", draft.Title, err)
	}

	logging.Info("created jira issue", "key", created.Key, "title", draft.Title)

	// The create response carries only identifiers; echo the draft back
	// as the snapshot.
	return models.Ticket{
		Title:  draft.Title,
		Body:   description,
		State:  "open",
		Labels: draft.Labels,
	}, nil
}

// AddToBoard is not supported for JIRA: issues land on their project's
// board by virtue of the project key.
func (c *Client) AddToBoard(ctx context.Context, ticketID int64, boardID int64) error {
	logging.Debug("jira board attach is a no-op", "ticket_id", ticketID)
	return nil
}

// toTicket converts a JIRA issue into our internal model.
func toTicket(issue *jira.Issue) models.Ticket {
	ticket := models.Ticket{
		ID:        parseID(issue.ID),
		Number:    issueNumber(issue.Key),
		Title:     issue.Fields.Summary,
		Body:      issue.Fields.Description,
		State:     "open",
		Labels:    issue.Fields.Labels,
		CreatedAt: time.Time(issue.Fields.Created),
		UpdatedAt: time.Time(issue.Fields.Updated),
	}

	if issue.Fields.Status != nil && issue.Fields.Status.StatusCategory.Key == "done" {
		ticket.State = "closed"
	}
	if issue.Fields.Assignee != nil {
		ticket.Assignees = []string{issue.Fields.Assignee.Name}
	}

	return ticket
}

// parseID converts JIRA's string issue ID to an int64, zero on failure.
func parseID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// issueNumber extracts the numeric part of a JIRA issue key such as
// "ABC-123".
func issueNumber(key string) int {
	idx := strings.LastIndex(key, "-")
	if idx == -1 {
		return 0
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
