// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Tracker backend identifiers accepted by the "tracker" setting.
const (
	TrackerGitHub = "github"
	TrackerJira   = "jira"
)

// Config holds all configuration parameters for the application.
type Config struct {
	// Tracker selects the issue tracker backend ("github" or "jira").
	Tracker string

	GitHub GitHubConfig
	Jira   JiraConfig
	Gemini GeminiConfig
	Paths  PathsConfig
	Bot    BotConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token      string
	Repository string
	Domain     string
	// ProjectColumnID is the classic project board column to attach
	// created issues to. Zero disables board attachment.
	ProjectColumnID int64
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Username   string
	Token      string
	ProjectKey string
}

// GeminiConfig holds generative model configuration.
type GeminiConfig struct {
	APIKey         string
	Model          string
	Endpoint       string
	TimeoutSeconds int
}

// PathsConfig holds locations of the external documents the tool reads.
type PathsConfig struct {
	Plan           string
	PromptTemplate string
}

// BotConfig holds run behavior configuration.
type BotConfig struct {
	DryRun              bool
	MaxNewTickets       int
	IncludeClosedIssues bool
}

// LoadConfig reads configuration from the given YAML file, with
// credentials overridable through environment variables. Validation
// failures are fatal: no work starts on a broken configuration.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	// Credentials come from the environment when set, so config files
	// can be committed without secrets.
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")

	config := &Config{
		Tracker: strings.ToLower(v.GetString("tracker")),
		GitHub: GitHubConfig{
			Token:           v.GetString("github.token"),
			Repository:      v.GetString("github.repository"),
			Domain:          v.GetString("github.domain"),
			ProjectColumnID: v.GetInt64("github.project_column_id"),
		},
		Jira: JiraConfig{
			URL:        v.GetString("jira.url"),
			Username:   v.GetString("jira.username"),
			Token:      v.GetString("jira.token"),
			ProjectKey: v.GetString("jira.project_key"),
		},
		Gemini: GeminiConfig{
			APIKey:         v.GetString("gemini.api_key"),
			Model:          v.GetString("gemini.model"),
			Endpoint:       v.GetString("gemini.endpoint"),
			TimeoutSeconds: v.GetInt("gemini.timeout_seconds"),
		},
		Paths: PathsConfig{
			Plan:           v.GetString("paths.plan"),
			PromptTemplate: v.GetString("paths.prompt_template"),
		},
		Bot: BotConfig{
			DryRun:              v.GetBool("bot.dry_run"),
			MaxNewTickets:       v.GetInt("bot.max_new_tickets"),
			IncludeClosedIssues: v.GetBool("bot.include_closed_issues"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tracker", TrackerGitHub)
	v.SetDefault("github.domain", "github.com")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.timeout_seconds", 60)
	v.SetDefault("bot.max_new_tickets", 10)
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missing []string

	switch config.Tracker {
	case TrackerGitHub:
		if config.GitHub.Token == "" {
			missing = append(missing, "github.token (GITHUB_TOKEN)")
		}
		if config.GitHub.Repository == "" {
			missing = append(missing, "github.repository")
		}
	case TrackerJira:
		if config.Jira.URL == "" {
			missing = append(missing, "jira.url (JIRA_URL)")
		}
		if config.Jira.Username == "" {
			missing = append(missing, "jira.username (JIRA_USERNAME)")
		}
		if config.Jira.Token == "" {
			missing = append(missing, "jira.token (JIRA_TOKEN)")
		}
		if config.Jira.ProjectKey == "" {
			missing = append(missing, "jira.project_key")
		}
	default:
		return fmt.Errorf("invalid tracker %q: must be %q or %q", config.Tracker, TrackerGitHub, TrackerJira)
	}

	if config.Paths.Plan == "" {
		missing = append(missing, "paths.plan")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missing)
	}

	return validateCredentials(config)
}

// validateCredentials rejects placeholder values copied verbatim from the
// example configuration.
func validateCredentials(config *Config) error {
	credentials := []struct {
		name  string
		value string
	}{
		{"github.token", config.GitHub.Token},
		{"gemini.api_key", config.Gemini.APIKey},
		{"jira.token", config.Jira.Token},
	}

	for _, cred := range credentials {
		if strings.HasPrefix(cred.value, "YOUR_") && strings.HasSuffix(cred.value, "_HERE") {
			return fmt.Errorf("%s is still set to a placeholder value, update your configuration", cred.name)
		}
	}

	return nil
}

// ValidateGeminiConfig validates generative model configuration. The
// synthesis path needs it; the dry-run fallback path does not, so this
// is checked separately from LoadConfig.
func ValidateGeminiConfig(config *Config) error {
	var missing []string

	if config.Gemini.APIKey == "" {
		missing = append(missing, "gemini.api_key (GEMINI_API_KEY)")
	}
	if config.Gemini.Model == "" {
		missing = append(missing, "gemini.model")
	}
	if config.Paths.PromptTemplate == "" {
		missing = append(missing, "paths.prompt_template")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missing)
	}

	return nil
}
