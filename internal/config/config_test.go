package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GITHUB_TOKEN", "GITHUB_DOMAIN", "GITHUB_REPOSITORY", "GEMINI_API_KEY", "JIRA_URL", "JIRA_USERNAME", "JIRA_TOKEN"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoadConfigGitHub(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
tracker: github
github:
  token: test-token
  repository: owner/repo
paths:
  plan: plan.yaml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, TrackerGitHub, cfg.Tracker)
	assert.Equal(t, "test-token", cfg.GitHub.Token)
	assert.Equal(t, "owner/repo", cfg.GitHub.Repository)
	assert.Equal(t, "github.com", cfg.GitHub.Domain, "domain defaults to github.com")
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model, "model default applied")
	assert.Equal(t, 10, cfg.Bot.MaxNewTickets, "max_new_tickets default applied")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "env-token")

	path := writeConfig(t, `
tracker: github
github:
  token: file-token
  repository: owner/repo
paths:
  plan: plan.yaml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.GitHub.Token)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing github token",
			content: `
tracker: github
github:
  repository: owner/repo
paths:
  plan: plan.yaml
`,
		},
		{
			name: "missing repository",
			content: `
tracker: github
github:
  token: test-token
paths:
  plan: plan.yaml
`,
		},
		{
			name: "missing plan path",
			content: `
tracker: github
github:
  token: test-token
  repository: owner/repo
`,
		},
		{
			name: "invalid tracker",
			content: `
tracker: gitlab
github:
  token: test-token
  repository: owner/repo
paths:
  plan: plan.yaml
`,
		},
		{
			name: "jira tracker missing credentials",
			content: `
tracker: jira
paths:
  plan: plan.yaml
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfigRejectsPlaceholderCredentials(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
tracker: github
github:
  token: YOUR_GITHUB_TOKEN_HERE
  repository: owner/repo
paths:
  plan: plan.yaml
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder")
}

func TestLoadConfigJira(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
tracker: jira
jira:
  url: https://jira.example.com
  username: user
  token: secret
  project_key: PROJ
paths:
  plan: plan.yaml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, TrackerJira, cfg.Tracker)
	assert.Equal(t, "PROJ", cfg.Jira.ProjectKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "fully configured",
			cfg: Config{
				Gemini: GeminiConfig{APIKey: "key", Model: "gemini-1.5-flash"},
				Paths:  PathsConfig{PromptTemplate: "template.yaml"},
			},
			wantErr: false,
		},
		{
			name: "missing api key",
			cfg: Config{
				Gemini: GeminiConfig{Model: "gemini-1.5-flash"},
				Paths:  PathsConfig{PromptTemplate: "template.yaml"},
			},
			wantErr: true,
		},
		{
			name: "missing prompt template path",
			cfg: Config{
				Gemini: GeminiConfig{APIKey: "key", Model: "gemini-1.5-flash"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
