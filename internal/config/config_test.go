package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// clearEnv blanks every variable the loader reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range wellKnownEnv {
		t.Setenv(env, "")
	}
	for _, key := range []string{"PAGE_SIZE", "MAX_PAGES", "ISSUE_STATES", "CONTRIBUTOR_STRATEGY", "OUTPUT"} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, []string{"open", "closed"}, cfg.IssueStates)
	assert.Equal(t, "created", cfg.Sort)
	assert.Equal(t, "desc", cfg.Direction)
	assert.Equal(t, domain.StrategyProbe, cfg.Strategy())
	assert.True(t, cfg.IssueTotals)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, "https://api.github.com/", cfg.APIURL)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("OWNER", " octo-org ")
	t.Setenv("REPO", "octo-repo")
	t.Setenv("COMMUNITY_METRICS_MAX_PAGES", "2")
	t.Setenv("COMMUNITY_METRICS_ISSUE_STATES", "all")
	t.Setenv("COMMUNITY_METRICS_CONTRIBUTOR_STRATEGY", "walk")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ghp_test", cfg.Token)
	assert.Equal(t, "octo-org/octo-repo", cfg.Repository())
	assert.Equal(t, 2, cfg.MaxPages)
	assert.Equal(t, []string{"all"}, cfg.IssueStates)
	assert.Equal(t, domain.StrategyWalk, cfg.Strategy())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env_wins")
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
github_token: ghp_file
owner: file-owner
repo: file-repo
page_size: 50
issue_states: [closed]
output: yaml
`), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_env_wins", cfg.Token)
	assert.Equal(t, "file-owner", cfg.Owner)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, []string{"closed"}, cfg.IssueStates)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OWNER=dotenv-owner\nREPO=dotenv-repo\n"), 0o600))
	t.Setenv("REPO", "already-set")
	// godotenv never overrides a variable that exists, even an empty one.
	require.NoError(t, os.Unsetenv("OWNER"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("OWNER") })

	assert.Equal(t, "dotenv-owner", os.Getenv("OWNER"))
	assert.Equal(t, "already-set", os.Getenv("REPO"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Token:               "ghp_test",
			Owner:               "o",
			Repo:                "r",
			PageSize:            100,
			MaxPages:            5,
			IssueStates:         []string{"open", "closed"},
			ContributorStrategy: "probe",
		}
	}

	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectedErr []error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Token = "" }, expectedErr: []error{ErrMissingToken}},
		{
			name:        "missing owner and repo",
			mutate:      func(c *Config) { c.Owner, c.Repo = "", "" },
			expectedErr: []error{ErrMissingOwner, ErrMissingRepo},
		},
		{name: "page size above platform maximum", mutate: func(c *Config) { c.PageSize = 101 }, expectedErr: []error{ErrInvalidPageSize}},
		{name: "page size zero", mutate: func(c *Config) { c.PageSize = 0 }, expectedErr: []error{ErrInvalidPageSize}},
		{name: "max pages zero", mutate: func(c *Config) { c.MaxPages = 0 }, expectedErr: []error{ErrInvalidMaxPages}},
		{name: "unknown strategy", mutate: func(c *Config) { c.ContributorStrategy = "guess" }, expectedErr: []error{ErrInvalidStrategy}},
		{name: "unknown state", mutate: func(c *Config) { c.IssueStates = []string{"merged"} }, expectedErr: []error{ErrInvalidState}},
		{name: "all combined", mutate: func(c *Config) { c.IssueStates = []string{"all", "open"} }, expectedErr: []error{ErrInvalidState}},
		{name: "duplicate state", mutate: func(c *Config) { c.IssueStates = []string{"open", "open"} }, expectedErr: []error{ErrInvalidState}},
		{name: "no states", mutate: func(c *Config) { c.IssueStates = nil }, expectedErr: []error{ErrInvalidState}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if len(tc.expectedErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tc.expectedErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}
