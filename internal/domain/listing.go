package domain

import "strings"

// Endpoint identifies a list-style repository endpoint.
type Endpoint string

const (
	EndpointIssues       Endpoint = "issues"
	EndpointContributors Endpoint = "contributors"
)

const (
	// MaxPageSize is the largest per_page value the platform accepts.
	MaxPageSize = 100
	// DefaultMaxPages caps issue listings.
	DefaultMaxPages = 5
	// Uncapped disables the page cap of a listing.
	Uncapped = 0
)

// ListingQuery describes one paginated listing.
type ListingQuery struct {
	Endpoint  Endpoint
	State     string
	Sort      string
	Direction string
	Anonymous bool
	PageSize  int
	MaxPages  int
}

// Page returns the request for a single page of the listing.
func (q ListingQuery) Page(number int) PageQuery {
	return PageQuery{
		Endpoint:  q.Endpoint,
		State:     q.State,
		Sort:      q.Sort,
		Direction: q.Direction,
		Anonymous: q.Anonymous,
		PerPage:   q.PageSize,
		Page:      number,
	}
}

// PageQuery is the cursor for one fetch call.
type PageQuery struct {
	Endpoint  Endpoint
	State     string
	Sort      string
	Direction string
	Anonymous bool
	PerPage   int
	Page      int
}

// Page is one response of a listing endpoint.
// LastPage and NextPage come from the pagination hint and are 0 when absent.
type Page struct {
	Records  []RawRecord
	LastPage int
	NextPage int
}

// ListingStatus tells how a listing ended.
type ListingStatus string

const (
	// ListingComplete means a short or empty page was seen.
	ListingComplete ListingStatus = "complete"
	// ListingCapped means MaxPages full pages were fetched.
	ListingCapped ListingStatus = "capped"
	// ListingPartial means a page after the first failed; earlier pages are kept.
	ListingPartial ListingStatus = "partial"
	// ListingFailed means the first page failed and no records are known.
	ListingFailed ListingStatus = "failed"
)

// Listing is the result of paging through one endpoint.
type Listing struct {
	Query   ListingQuery
	Records []RawRecord
	Pages   int
	Status  ListingStatus
	Err     error
}

// Failed reports whether the listing produced no usable data.
func (l Listing) Failed() bool { return l.Status == ListingFailed }

// Name is a short label such as "issues[open]".
func (l Listing) Name() string {
	if l.Query.State == "" {
		return string(l.Query.Endpoint)
	}
	return string(l.Query.Endpoint) + "[" + l.Query.State + "]"
}

// ContributorStrategy selects how contributors are counted.
type ContributorStrategy string

const (
	// StrategyProbe requests one record per page and reads the last-page hint,
	// falling back to StrategyWalk when there is no hint.
	StrategyProbe ContributorStrategy = "probe"
	// StrategyWalk pages through every contributor at the maximum page size.
	StrategyWalk ContributorStrategy = "walk"
)

// ParseContributorStrategy accepts "probe" or "walk", case-insensitively.
func ParseContributorStrategy(s string) (ContributorStrategy, bool) {
	switch ContributorStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyProbe:
		return StrategyProbe, true
	case StrategyWalk:
		return StrategyWalk, true
	}
	return "", false
}

// ContributorBreakdown splits a walked contributor listing by identity kind.
type ContributorBreakdown struct {
	Named     int `json:"named" yaml:"named"`
	Anonymous int `json:"anonymous" yaml:"anonymous"`
}

// ContributorCount is the outcome of counting contributors.
// Strategy is the strategy that produced Count, which may differ from the requested one.
type ContributorCount struct {
	Count     int
	Strategy  ContributorStrategy
	Breakdown *ContributorBreakdown
	Listing   Listing
}

// Failed reports whether no count could be established.
func (c ContributorCount) Failed() bool { return c.Listing.Failed() }

// IssueTotals are the repository-wide issue totals, pull requests excluded.
type IssueTotals struct {
	Open   int
	Closed int
}

// Total returns Open + Closed.
func (t IssueTotals) Total() int { return t.Open + t.Closed }
