package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/planbot/internal/config"
)

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.JiraConfig
	}{
		{
			name: "missing url",
			cfg:  config.JiraConfig{Username: "u", Token: "t", ProjectKey: "PROJ"},
		},
		{
			name: "missing username",
			cfg:  config.JiraConfig{URL: "https://jira.example.com", Token: "t", ProjectKey: "PROJ"},
		},
		{
			name: "missing token",
			cfg:  config.JiraConfig{URL: "https://jira.example.com", Username: "u", ProjectKey: "PROJ"},
		},
		{
			name: "missing project key",
			cfg:  config.JiraConfig{URL: "https://jira.example.com", Username: "u", Token: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewClientValidConfig(t *testing.T) {
	client, err := NewClient(config.JiraConfig{
		URL:        "https://jira.example.com",
		Username:   "u",
		Token:      "t",
		ProjectKey: "PROJ",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestIssueNumber(t *testing.T) {
	assert.Equal(t, 123, issueNumber("ABC-123"))
	assert.Equal(t, 7, issueNumber("A-B-7"))
	assert.Zero(t, issueNumber("no-number-"))
	assert.Zero(t, issueNumber("nodash"))
}

func TestParseID(t *testing.T) {
	assert.Equal(t, int64(10042), parseID("10042"))
	assert.Zero(t, parseID("not-a-number"))
}

func TestToTicket(t *testing.T) {
	issue := &jira.Issue{
		ID:  "10042",
		Key: "PROJ-42",
		Fields: &jira.IssueFields{
			Summary:     "Create config",
			Description: "body",
			Labels:      []string{"setup"},
			Status: &jira.Status{
				StatusCategory: jira.StatusCategory{Key: "done"},
			},
		},
	}

	ticket := toTicket(issue)
	assert.Equal(t, int64(10042), ticket.ID)
	assert.Equal(t, 42, ticket.Number)
	assert.Equal(t, "Create config", ticket.Title)
	assert.Equal(t, "closed", ticket.State, "done status category maps to closed")
	assert.Equal(t, []string{"setup"}, ticket.Labels)
}
