// Package config loads the run configuration from flags, environment, an optional
// config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// EnvPrefix namespaces the environment variables of keys without a well-known name.
const EnvPrefix = "COMMUNITY_METRICS"

var (
	ErrMissingToken    = errors.New("GITHUB_TOKEN environment variable is not set")
	ErrMissingOwner    = errors.New("repository owner is not set (OWNER or --owner)")
	ErrMissingRepo     = errors.New("repository name is not set (REPO or --repo)")
	ErrInvalidPageSize = fmt.Errorf("page size must be between 1 and %d", domain.MaxPageSize)
	ErrInvalidMaxPages = errors.New("max pages must be at least 1")
	ErrInvalidStrategy = errors.New("contributor strategy must be probe or walk")
	ErrInvalidState    = errors.New("issue states must be open, closed or all")
)

// Config holds the configuration of one run. It is loaded once and not modified afterwards.
type Config struct {
	Token               string   `mapstructure:"github_token"`
	Owner               string   `mapstructure:"owner"`
	Repo                string   `mapstructure:"repo"`
	APIURL              string   `mapstructure:"api_url"`
	GraphQLURL          string   `mapstructure:"graphql_url"`
	PageSize            int      `mapstructure:"page_size"`
	MaxPages            int      `mapstructure:"max_pages"`
	IssueStates         []string `mapstructure:"issue_states"`
	Sort                string   `mapstructure:"sort"`
	Direction           string   `mapstructure:"direction"`
	ContributorStrategy string   `mapstructure:"contributor_strategy"`
	IncludeAnonymous    bool     `mapstructure:"include_anonymous"`
	IssueTotals         bool     `mapstructure:"issue_totals"`
	Output              string   `mapstructure:"output"`
	LogFormat           string   `mapstructure:"log_format"`
	Verbose             bool     `mapstructure:"verbose"`
}

// wellKnownEnv maps keys to the environment variable names used without a prefix.
var wellKnownEnv = map[string]string{
	"github_token": "GITHUB_TOKEN",
	"owner":        "OWNER",
	"repo":         "REPO",
	"api_url":      "GITHUB_API_URL",
	"graphql_url":  "GITHUB_GRAPHQL_URL",
}

// NewViper returns a viper instance with defaults and environment bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range wellKnownEnv {
		_ = v.BindEnv(key, env, EnvPrefix+"_"+strings.ToUpper(key))
	}
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "https://api.github.com/")
	v.SetDefault("graphql_url", "https://api.github.com/graphql")
	v.SetDefault("page_size", domain.MaxPageSize)
	v.SetDefault("max_pages", domain.DefaultMaxPages)
	v.SetDefault("issue_states", []string{"open", "closed"})
	v.SetDefault("sort", "created")
	v.SetDefault("direction", "desc")
	v.SetDefault("contributor_strategy", string(domain.StrategyProbe))
	v.SetDefault("include_anonymous", false)
	v.SetDefault("issue_totals", true)
	v.SetDefault("output", "text")
	v.SetDefault("log_format", "text")
}

// LoadDotEnv loads variables from the given .env files (".env" when none are given)
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the optional config file and unmarshals every layer into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Owner = strings.TrimSpace(c.Owner)
	c.Repo = strings.TrimSpace(c.Repo)
	states := make([]string, 0, len(c.IssueStates))
	for _, s := range c.IssueStates {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			states = append(states, s)
		}
	}
	c.IssueStates = states
}

// Validate reports every invalid setting at once. It must pass before any request is made.
func (c *Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.Owner == "" {
		errs = append(errs, ErrMissingOwner)
	}
	if c.Repo == "" {
		errs = append(errs, ErrMissingRepo)
	}
	if c.PageSize < 1 || c.PageSize > domain.MaxPageSize {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PageSize))
	}
	if c.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidMaxPages, c.MaxPages))
	}
	if _, ok := domain.ParseContributorStrategy(c.ContributorStrategy); !ok {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidStrategy, c.ContributorStrategy))
	}
	if err := validateStates(c.IssueStates); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateStates(states []string) error {
	if len(states) == 0 {
		return fmt.Errorf("%w: none given", ErrInvalidState)
	}
	seen := make(map[string]bool, len(states))
	for _, s := range states {
		switch s {
		case "open", "closed", "all":
		default:
			return fmt.Errorf("%w: got %q", ErrInvalidState, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidState, s)
		}
		seen[s] = true
	}
	if seen["all"] && len(states) > 1 {
		return fmt.Errorf("%w: all cannot be combined with other states", ErrInvalidState)
	}
	return nil
}

// Strategy returns the parsed contributor strategy. Call after Validate.
func (c *Config) Strategy() domain.ContributorStrategy {
	s, _ := domain.ParseContributorStrategy(c.ContributorStrategy)
	return s
}

// Repository returns "owner/repo".
func (c *Config) Repository() string {
	return c.Owner + "/" + c.Repo
}
