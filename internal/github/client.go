// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/planbot/internal/config"
	"github.com/danielolaszy/planbot/internal/logging"
	"github.com/danielolaszy/planbot/pkg/models"
)

// Client encapsulates the GitHub API client for a single repository.
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// NewClient creates a new GitHub API client from configuration. It
// resolves the API base URL from the configured domain, authenticates,
// and verifies the token before returning.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	token := cfg.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	owner, repo, err := splitRepository(cfg.Repository)
	if err != nil {
		return nil, err
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "github.com"
	}

	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"repository", cfg.Repository,
		"token", logging.MaskSensitive(token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	c := &Client{client: client, owner: owner, repo: repo}
	if err := c.TestConnection(context.Background()); err != nil {
		return nil, err
	}

	return c, nil
}

// TestConnection verifies the token by fetching the authenticated user.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful", "username", user.GetLogin())
	return nil
}

// FetchIssues retrieves issues from the repository in the given state
// ("open", "closed" or "all"), filtering out pull requests and
// converting the API objects to our internal model.
func (c *Client) FetchIssues(ctx context.Context, state string) ([]models.Ticket, error) {
	opts := &github.IssueListByRepoOptions{
		State: state,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var allIssues []*github.Issue
	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			logging.Error("failed to fetch github issues", "state", state, "error", err)
			return nil, fmt.Errorf("failed to fetch GitHub issues: %w", err)
		}

		allIssues = append(allIssues, issues...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	result := make([]models.Ticket, 0, len(allIssues))
	for _, issue := range allIssues {
		// Pull requests are also returned by the Issues API.
		if issue.PullRequestLinks != nil {
			continue
		}
		result = append(result, toTicket(issue))
	}

	logging.Debug("fetched github issues", "state", state, "count", len(result))
	return result, nil
}

// CreateIssue creates a new issue from a validated draft. A draft
// milestone is resolved by title, creating the milestone when the
// repository does not have it yet.
func (c *Client) CreateIssue(ctx context.Context, draft models.TicketDraft) (models.Ticket, error) {
	request := &github.IssueRequest{
		Title: github.String(draft.Title),
		Body:  github.String(draft.Body),
	}
	if len(draft.Labels) > 0 {
		request.Labels = &draft.Labels
	}
	if len(draft.Assignees) > 0 {
		request.Assignees = &draft.Assignees
	}

	if draft.Milestone != "" {
		number, err := c.ensureMilestone(ctx, draft.Milestone)
		if err != nil {
			// Milestones are decoration, not identity. Create the
			// issue without one rather than fail it.
			logging.Warn("failed to resolve milestone, creating issue without it",
				"milestone", draft.Milestone,
				"error", err)
		} else {
			request.Milestone = github.Int(number)
		}
	}

	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, request)
	if err != nil {
		logging.Error("failed to create github issue", "title", draft.Title, "error", err)
		return models.Ticket{}, fmt.Errorf("failed to create GitHub issue %q: %w", draft.Title, err)
	}

	logging.Info("created github issue",
		"number", issue.GetNumber(),
		"title", issue.GetTitle())

	return toTicket(issue), nil
}

// UpdateIssue patches the title and/or body of an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, number int, title, body string) (models.Ticket, error) {
	request := &github.IssueRequest{}
	if title != "" {
		request.Title = github.String(title)
	}
	if body != "" {
		request.Body = github.String(body)
	}

	issue, _, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, request)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to update GitHub issue #%d: %w", number, err)
	}

	return toTicket(issue), nil
}

// CloseIssue transitions an issue to the closed state.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	request := &github.IssueRequest{State: github.String("closed")}

	_, _, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, request)
	if err != nil {
		return fmt.Errorf("failed to close GitHub issue #%d: %w", number, err)
	}

	logging.Info("closed github issue", "number", number)
	return nil
}

// AddToBoard attaches a created issue to a classic project board column
// as a new card. Best effort: callers treat a failure as non-fatal.
func (c *Client) AddToBoard(ctx context.Context, ticketID int64, columnID int64) error {
	opts := &github.ProjectCardOptions{
		ContentID:   ticketID,
		ContentType: "Issue",
	}

	_, _, err := c.client.Projects.CreateProjectCard(ctx, columnID, opts)
	if err != nil {
		return fmt.Errorf("failed to add issue to project board column %d: %w", columnID, err)
	}

	logging.Debug("added issue to project board", "ticket_id", ticketID, "column_id", columnID)
	return nil
}

// RepositoryInfo returns the repository's full name and open issue count
// for connection diagnostics.
func (c *Client) RepositoryInfo(ctx context.Context) (string, int, error) {
	repo, _, err := c.client.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get repository info: %w", err)
	}
	return repo.GetFullName(), repo.GetOpenIssuesCount(), nil
}

// ensureMilestone resolves a milestone title to its number, creating the
// milestone when it does not exist.
func (c *Client) ensureMilestone(ctx context.Context, title string) (int, error) {
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		milestones, resp, err := c.client.Issues.ListMilestones(ctx, c.owner, c.repo, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list milestones: %w", err)
		}
		for _, m := range milestones {
			if m.GetTitle() == title {
				return m.GetNumber(), nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	created, _, err := c.client.Issues.CreateMilestone(ctx, c.owner, c.repo, &github.Milestone{
		Title: github.String(title),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create milestone %q: %w", title, err)
	}

	logging.Info("created milestone", "title", title, "number", created.GetNumber())
	return created.GetNumber(), nil
}

// splitRepository parses an "owner/repo" repository identifier.
func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// toTicket converts a GitHub API issue into our internal model.
func toTicket(issue *github.Issue) models.Ticket {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, assignee := range issue.Assignees {
		assignees = append(assignees, assignee.GetLogin())
	}

	milestone := ""
	if issue.Milestone != nil {
		milestone = issue.Milestone.GetTitle()
	}

	return models.Ticket{
		ID:        issue.GetID(),
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		Labels:    labels,
		Milestone: milestone,
		Assignees: assignees,
		CreatedAt: issue.GetCreatedAt(),
		UpdatedAt: issue.GetUpdatedAt(),
	}
}
