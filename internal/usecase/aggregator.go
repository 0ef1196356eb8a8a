// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/community-metrics/internal/domain"
	"github.com/naka-gawa/community-metrics/internal/gateway"
)

// Options controls which listings the Aggregator requests.
type Options struct {
	Owner               string
	Repo                string
	IssueStates         []string
	Sort                string
	Direction           string
	PageSize            int
	MaxPages            int
	ContributorStrategy domain.ContributorStrategy
	IncludeAnonymous    bool
	IssueTotals         bool
}

// Aggregator is the use case for computing community metrics.
// It orchestrates the fetching, normalizing and computation of data.
type Aggregator struct {
	fetcher    gateway.Fetcher
	paginator  *Paginator
	normalizer *Normalizer
	opts       Options
	now        func() time.Time
	logger     logrus.FieldLogger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, opts Options, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		fetcher:    fetcher,
		paginator:  NewPaginator(fetcher, logger),
		normalizer: NewNormalizer(logger),
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the clock used as "now" for open issues.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate performs the main business logic.
// Issue listings, the contributor count and the issue totals are fetched concurrently;
// computation starts once all of them have finished. Fetch failures degrade the report
// instead of failing it, so the only error is a cancelled context.
func (a *Aggregator) Aggregate(ctx context.Context) (*domain.MetricsReport, error) {
	a.logger.Debugln("Usecase: Starting data aggregation...")

	listings := make([]domain.Listing, len(a.opts.IssueStates))
	var contributors domain.ContributorCount
	var totals *domain.IssueTotals

	var eg errgroup.Group
	for i, state := range a.opts.IssueStates {
		i, state := i, state
		eg.Go(func() error {
			listings[i] = a.paginator.FetchAll(ctx, domain.ListingQuery{
				Endpoint:  domain.EndpointIssues,
				State:     state,
				Sort:      a.opts.Sort,
				Direction: a.opts.Direction,
				PageSize:  a.opts.PageSize,
				MaxPages:  a.opts.MaxPages,
			})
			return nil
		})
	}

	eg.Go(func() error {
		contributors = a.paginator.FetchCount(ctx, domain.ListingQuery{
			Endpoint:  domain.EndpointContributors,
			Anonymous: a.opts.IncludeAnonymous,
			MaxPages:  domain.Uncapped,
		}, a.opts.ContributorStrategy)
		return nil
	})

	if a.opts.IssueTotals {
		eg.Go(func() error {
			t, err := a.fetcher.FetchIssueTotals(ctx)
			if err != nil {
				a.logger.WithError(err).Warn("Issue totals unavailable; sample coverage will not be reported")
				return nil
			}
			totals = t
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}
	a.logger.Debugln("Usecase: All data fetched.")

	var raw []domain.RawRecord
	issueListingFailed := false
	for _, l := range listings {
		raw = append(raw, l.Records...)
		issueListingFailed = issueListingFailed || l.Failed()
	}
	normalized := a.normalizer.Normalize(raw)

	report := Compute(normalized.Issues, contributors, a.now())
	report.Repository = a.opts.Owner + "/" + a.opts.Repo
	report.Issues.PullRequestsSkipped = normalized.PullRequests
	report.Issues.Dropped = len(normalized.Dropped)
	if totals != nil {
		report.Issues.Total = domain.Value(float64(totals.Total()))
		report.Issues.SampleCoverage = Coverage(len(normalized.Issues), totals)
	}
	// Without every state's listing the closed/total ratio is meaningless.
	if issueListingFailed {
		report.ResolutionRate = domain.NoData()
	}

	report.Listings = make([]domain.ListingSummary, 0, len(listings)+1)
	for _, l := range listings {
		report.Listings = append(report.Listings, domain.Summarize(l))
	}
	report.Listings = append(report.Listings, domain.Summarize(contributors.Listing))

	a.logger.Debugln("Usecase: Aggregation complete.")
	return &report, nil
}
