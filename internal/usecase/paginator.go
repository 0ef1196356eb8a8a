package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/community-metrics/internal/domain"
	"github.com/naka-gawa/community-metrics/internal/gateway"
)

// probePageSize is the per_page used by the contributor probe: with one record per
// page the last page number equals the total count.
const probePageSize = 1

// Paginator pages through listing endpoints of the gateway.
type Paginator struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
}

// NewPaginator creates a new Paginator instance.
func NewPaginator(fetcher gateway.Fetcher, logger logrus.FieldLogger) *Paginator {
	return &Paginator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll requests pages 1, 2, ... until a page is shorter than PageSize or
// MaxPages pages have been fetched. A failed page ends the listing: records from
// earlier pages are kept and the failure is recorded on the result, never returned.
func (p *Paginator) FetchAll(ctx context.Context, q domain.ListingQuery) domain.Listing {
	listing := domain.Listing{Query: q, Status: domain.ListingCapped}
	logger := p.logger.WithField("listing", listing.Name())

	for page := 1; q.MaxPages == domain.Uncapped || page <= q.MaxPages; page++ {
		result, err := p.fetcher.ListPage(ctx, q.Page(page))
		if err != nil {
			listing.Err = err
			listing.Status = domain.ListingPartial
			if page == 1 {
				listing.Status = domain.ListingFailed
			}
			logger.WithError(err).Warnf("Page %d failed; keeping %d records from %d earlier pages", page, len(listing.Records), listing.Pages)
			return listing
		}
		listing.Pages++
		listing.Records = append(listing.Records, result.Records...)
		if len(result.Records) < q.PageSize {
			listing.Status = domain.ListingComplete
			break
		}
	}

	logger.Debugf("Completed listing: %d records in %d pages (%s)", len(listing.Records), listing.Pages, listing.Status)
	return listing
}

// FetchCount counts the records of a listing. StrategyProbe asks for one record per page
// and trusts the last-page hint; without a hint it falls back to StrategyWalk. A failed
// probe is final, like any other failed page.
func (p *Paginator) FetchCount(ctx context.Context, q domain.ListingQuery, strategy domain.ContributorStrategy) domain.ContributorCount {
	if strategy == domain.StrategyProbe {
		if count, ok := p.probe(ctx, q); ok {
			return count
		}
	}

	q.PageSize = domain.MaxPageSize
	q.MaxPages = domain.Uncapped
	listing := p.FetchAll(ctx, q)
	named, anonymous := ClassifyContributors(listing.Records)
	return domain.ContributorCount{
		Count:     len(listing.Records),
		Strategy:  domain.StrategyWalk,
		Breakdown: &domain.ContributorBreakdown{Named: named, Anonymous: anonymous},
		Listing:   listing,
	}
}

func (p *Paginator) probe(ctx context.Context, q domain.ListingQuery) (domain.ContributorCount, bool) {
	q.PageSize = probePageSize
	q.MaxPages = 1
	logger := p.logger.WithField("listing", string(q.Endpoint))

	result, err := p.fetcher.ListPage(ctx, q.Page(1))
	if err != nil {
		logger.WithError(err).Warn("Count probe failed")
		return domain.ContributorCount{
			Strategy: domain.StrategyProbe,
			Listing:  domain.Listing{Query: q, Status: domain.ListingFailed, Err: err},
		}, true
	}
	if result.LastPage == 0 {
		logger.Debug("No pagination hint on count probe; walking all pages instead")
		return domain.ContributorCount{}, false
	}

	return domain.ContributorCount{
		Count:    result.LastPage * probePageSize,
		Strategy: domain.StrategyProbe,
		Listing: domain.Listing{
			Query:   q,
			Records: result.Records,
			Pages:   1,
			Status:  domain.ListingComplete,
		},
	}, true
}
