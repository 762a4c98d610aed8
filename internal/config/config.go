// Package config loads the tracker configuration from a YAML file and the
// process environment. The file carries the tracked repositories and
// presentation settings; credentials only ever come from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Gajesh2007/weekend-activity/internal/core"
)

// RepositoryConfig is one tracked repository entry in the config file.
type RepositoryConfig struct {
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
}

// SummaryConfig bounds how many records are displayed per contributor.
type SummaryConfig struct {
	MaxCommitsPerUser int `mapstructure:"max_commits_per_user"`
	MaxPRsPerUser     int `mapstructure:"max_prs_per_user"`
}

// SlackConfig holds the message metadata sent alongside the digest text.
type SlackConfig struct {
	Channel   string `mapstructure:"channel"`
	Username  string `mapstructure:"username"`
	IconEmoji string `mapstructure:"icon_emoji"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config holds the full application configuration.
type Config struct {
	Timezone     string             `mapstructure:"timezone"`
	Repositories []RepositoryConfig `mapstructure:"repositories"`
	Summary      SummaryConfig      `mapstructure:"summary"`
	Slack        SlackConfig        `mapstructure:"slack"`
	Log          LogConfig          `mapstructure:"log"`
	OpenAIModel  string             `mapstructure:"openai_model"`

	// Credentials, environment only.
	GitHubToken     string `mapstructure:"-"`
	OpenAIAPIKey    string `mapstructure:"-"`
	SlackWebhookURL string `mapstructure:"-"`
	DatabaseURL     string `mapstructure:"-"`

	location *time.Location
}

// Load reads the config file at path, applies defaults, pulls credentials
// from the environment, and validates everything that can fail before any
// network or store activity.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("timezone", "UTC")
	v.SetDefault("summary.max_commits_per_user", 10)
	v.SetDefault("summary.max_prs_per_user", 5)
	v.SetDefault("slack.channel", "#general")
	v.SetDefault("slack.username", "Weekend Warriors Bot")
	v.SetDefault("slack.icon_emoji", ":computer:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("openai_model", "gpt-4o")
	v.SetDefault("database_url", "postgres://localhost:5432/weekend_activity?sslmode=disable")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	env := viper.New()
	env.AutomaticEnv()
	cfg.GitHubToken = env.GetString("GITHUB_TOKEN")
	cfg.OpenAIAPIKey = env.GetString("OPENAI_API_KEY")
	cfg.SlackWebhookURL = env.GetString("SLACK_WEBHOOK_URL")
	cfg.DatabaseURL = env.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v.GetString("database_url")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	for _, r := range cfg.Repositories {
		if r.Owner == "" || r.Repo == "" {
			return nil, fmt.Errorf("repository entries need both owner and repo, got %q/%q", r.Owner, r.Repo)
		}
	}

	return &cfg, nil
}

// Location returns the configured timezone, resolved at load time.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// RepoRefs returns the tracked repositories as core references.
func (c *Config) RepoRefs() []core.RepoRef {
	refs := make([]core.RepoRef, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		refs = append(refs, core.RepoRef{Owner: r.Owner, Name: r.Repo})
	}
	return refs
}

// SummarizationEnabled reports whether the language-model credential is
// present. Summaries are generated only when it is.
func (c *Config) SummarizationEnabled() bool {
	return c.OpenAIAPIKey != ""
}
