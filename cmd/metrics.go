package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naka-gawa/community-metrics/internal/config"
	"github.com/naka-gawa/community-metrics/internal/gateway"
	"github.com/naka-gawa/community-metrics/internal/report"
	"github.com/naka-gawa/community-metrics/internal/usecase"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"owner":                "owner",
	"repo":                 "repo",
	"api-url":              "api_url",
	"graphql-url":          "graphql_url",
	"page-size":            "page_size",
	"max-pages":            "max_pages",
	"state":                "issue_states",
	"sort":                 "sort",
	"direction":            "direction",
	"contributor-strategy": "contributor_strategy",
	"include-anonymous":    "include_anonymous",
	"issue-totals":         "issue_totals",
	"output":               "output",
	"log-format":           "log_format",
	"verbose":              "verbose",
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Computes community-health metrics for one repository",
	Long: `Computes the issue resolution rate, the median issue resolution time and the
contributor count of a GitHub repository, and prints them as text, JSON, YAML or
Prometheus text exposition format.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.LoadDotEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}

		v := config.NewViper()
		if err := bindFlags(v, cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
			os.Exit(1)
		}
		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(v, configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := runMetrics(context.Background(), cfg, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// runMetrics validates the configuration before building any client, so a missing
// credential never reaches the network.
func runMetrics(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	emitter, err := report.New(cfg.Output)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose, cfg.LogFormat, stderr).WithFields(logrus.Fields{
		"run_id":     uuid.NewString(),
		"repository": cfg.Repository(),
	})

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:      cfg.Token,
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		APIURL:     cfg.APIURL,
		GraphQLURL: cfg.GraphQLURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	aggregator := usecase.NewAggregator(githubGateway, usecase.Options{
		Owner:               cfg.Owner,
		Repo:                cfg.Repo,
		IssueStates:         cfg.IssueStates,
		Sort:                cfg.Sort,
		Direction:           cfg.Direction,
		PageSize:            cfg.PageSize,
		MaxPages:            cfg.MaxPages,
		ContributorStrategy: cfg.Strategy(),
		IncludeAnonymous:    cfg.IncludeAnonymous,
		IssueTotals:         cfg.IssueTotals,
	}, logger)

	metrics, err := aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate metrics: %w", err)
	}
	if metrics.Incomplete() {
		logger.Warn("Some listings ended early; metrics are based on partial data")
	}
	return emitter.Emit(stdout, metrics)
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().StringP("owner", "o", "", "Repository owner (defaults to $OWNER)")
	metricsCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to $REPO)")
	metricsCmd.Flags().String("api-url", "https://api.github.com/", "GitHub REST API base URL")
	metricsCmd.Flags().String("graphql-url", "https://api.github.com/graphql", "GitHub GraphQL API URL")
	metricsCmd.Flags().Int("page-size", 100, "Records per page (1-100)")
	metricsCmd.Flags().Int("max-pages", 5, "Maximum pages per issue listing")
	metricsCmd.Flags().StringSlice("state", []string{"open", "closed"}, "Issue states to list: open, closed or all")
	metricsCmd.Flags().String("sort", "created", "Issue sort field")
	metricsCmd.Flags().String("direction", "desc", "Issue sort direction")
	metricsCmd.Flags().String("contributor-strategy", "probe", "Contributor counting: probe (last-page hint) or walk (all pages)")
	metricsCmd.Flags().Bool("include-anonymous", false, "Count anonymous contributors")
	metricsCmd.Flags().Bool("issue-totals", true, "Query repository issue totals to report sample coverage")
	metricsCmd.Flags().String("output", "text", "Output format: "+strings.Join(report.Formats(), ", "))
}
