package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Measure is a computed number or an explicit "no data" marker.
type Measure struct {
	Value float64
	Valid bool
}

// Value wraps a computed number.
func Value(v float64) Measure { return Measure{Value: v, Valid: true} }

// NoData is the marker for a value that could not be computed.
func NoData() Measure { return Measure{} }

// String renders the value with the shortest exact representation, or "no data".
func (m Measure) String() string {
	if !m.Valid {
		return "no data"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = NoData()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Value(v)
	return nil
}

func (m Measure) MarshalYAML() (interface{}, error) {
	if !m.Valid {
		return nil, nil
	}
	return m.Value, nil
}

// Distribution summarizes resolution times in whole days.
type Distribution struct {
	Samples int     `json:"samples" yaml:"samples"`
	Min     Measure `json:"min" yaml:"min"`
	Max     Measure `json:"max" yaml:"max"`
	Mean    Measure `json:"mean" yaml:"mean"`
	P90     Measure `json:"p90" yaml:"p90"`
}

// IssueSummary describes the issue sample the metrics were computed from.
type IssueSummary struct {
	Open                int     `json:"open" yaml:"open"`
	Closed              int     `json:"closed" yaml:"closed"`
	Sampled             int     `json:"sampled" yaml:"sampled"`
	PullRequestsSkipped int     `json:"pull_requests_skipped" yaml:"pull_requests_skipped"`
	Dropped             int     `json:"dropped" yaml:"dropped"`
	Total               Measure `json:"total" yaml:"total"`
	SampleCoverage      Measure `json:"sample_coverage" yaml:"sample_coverage"`
}

// ContributorSummary describes how the contributor count was obtained.
type ContributorSummary struct {
	Strategy  ContributorStrategy   `json:"strategy" yaml:"strategy"`
	Breakdown *ContributorBreakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// ListingSummary is the outcome of one paginated listing.
type ListingSummary struct {
	Name    string        `json:"name" yaml:"name"`
	Pages   int           `json:"pages" yaml:"pages"`
	Records int           `json:"records" yaml:"records"`
	Status  ListingStatus `json:"status" yaml:"status"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summarize converts a listing into its reportable form.
func Summarize(l Listing) ListingSummary {
	s := ListingSummary{
		Name:    l.Name(),
		Pages:   l.Pages,
		Records: len(l.Records),
		Status:  l.Status,
	}
	if l.Err != nil {
		s.Error = l.Err.Error()
	}
	return s
}

// MetricsReport is the single artifact handed to the report emitter.
// The three headline fields are always present, either as a number or as no data.
type MetricsReport struct {
	Repository           string             `json:"repository" yaml:"repository"`
	GeneratedAt          time.Time          `json:"generated_at" yaml:"generated_at"`
	ResolutionRate       Measure            `json:"resolution_rate" yaml:"resolution_rate"`
	MedianResolutionDays Measure            `json:"median_resolution_days" yaml:"median_resolution_days"`
	ContributorCount     Measure            `json:"contributor_count" yaml:"contributor_count"`
	ResolutionDays       Distribution       `json:"resolution_days" yaml:"resolution_days"`
	Issues               IssueSummary       `json:"issues" yaml:"issues"`
	Contributors         ContributorSummary `json:"contributors" yaml:"contributors"`
	Listings             []ListingSummary   `json:"listings" yaml:"listings"`
}

// Incomplete reports whether any listing ended without its full data.
func (r *MetricsReport) Incomplete() bool {
	for _, l := range r.Listings {
		if l.Status == ListingPartial || l.Status == ListingFailed {
			return true
		}
	}
	return false
}
