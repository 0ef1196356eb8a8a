// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// ListPage fetches a single page of a repository listing endpoint.
	ListPage(ctx context.Context, q domain.PageQuery) (*domain.Page, error)
	// FetchIssueTotals returns the repository-wide open and closed issue counts.
	FetchIssueTotals(ctx context.Context) (*domain.IssueTotals, error)
}

// Options configures a GitHubGateway.
type Options struct {
	Token      string
	Owner      string
	Repo       string
	APIURL     string
	GraphQLURL string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	logger        logrus.FieldLogger
}

// issueTotalsQuery counts issues per state. GraphQL issues never include pull requests.
type issueTotalsQuery struct {
	Repository struct {
		Open struct {
			TotalCount githubv4.Int
		} `graphql:"open: issues(states: OPEN)"`
		Closed struct {
			TotalCount githubv4.Int
		} `graphql:"closed: issues(states: CLOSED)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger logrus.FieldLogger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.APIURL != "" {
		baseURL, err := parseBaseURL(opts.APIURL)
		if err != nil {
			return nil, err
		}
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		owner:         opts.Owner,
		repo:          opts.Repo,
		logger:        logger,
	}, nil
}

// parseBaseURL makes sure the REST base URL ends with a slash, as go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL %q: %w", raw, err)
	}
	return u, nil
}

// ListPage decodes the page body as raw records so a malformed entry only affects itself.
func (g *GitHubGateway) ListPage(ctx context.Context, q domain.PageQuery) (*domain.Page, error) {
	u := fmt.Sprintf("repos/%s/%s/%s?%s", url.PathEscape(g.owner), url.PathEscape(g.repo), q.Endpoint, pageValues(q).Encode())
	req, err := g.restClient.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", q.Endpoint, err)
	}

	var records []domain.RawRecord
	resp, err := g.restClient.Do(ctx, req, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s page %d: %w", q.Endpoint, q.Page, err)
	}
	g.logger.Debugf("  Fetched %s page %d (%d records, last page hint %d)", q.Endpoint, q.Page, len(records), resp.LastPage)

	return &domain.Page{
		Records:  records,
		LastPage: resp.LastPage,
		NextPage: resp.NextPage,
	}, nil
}

func pageValues(q domain.PageQuery) url.Values {
	v := url.Values{}
	switch q.Endpoint {
	case domain.EndpointIssues:
		if q.State != "" {
			v.Set("state", q.State)
		}
		if q.Sort != "" {
			v.Set("sort", q.Sort)
		}
		if q.Direction != "" {
			v.Set("direction", q.Direction)
		}
	case domain.EndpointContributors:
		if q.Anonymous {
			v.Set("anon", "1")
		}
	}
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	return v
}

// FetchIssueTotals fetches open and closed issue totals in one GraphQL query.
func (g *GitHubGateway) FetchIssueTotals(ctx context.Context) (*domain.IssueTotals, error) {
	g.logger.Debugln("Fetching issue totals using GraphQL API...")
	variables := map[string]interface{}{
		"owner": githubv4.String(g.owner),
		"name":  githubv4.String(g.repo),
	}
	var q issueTotalsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for issue totals: %w", err)
	}
	return &domain.IssueTotals{
		Open:   int(q.Repository.Open.TotalCount),
		Closed: int(q.Repository.Closed.TotalCount),
	}, nil
}
