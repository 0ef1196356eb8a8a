package usecase

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

const day = 24 * time.Hour

// Compute derives the metrics report from normalized issues and the contributor count.
// It performs no I/O: for fixed inputs and a fixed now the result is always the same.
func Compute(issues []domain.IssueRecord, contributors domain.ContributorCount, now time.Time) domain.MetricsReport {
	report := domain.MetricsReport{
		GeneratedAt:      now,
		ResolutionRate:   domain.NoData(),
		ContributorCount: domain.NoData(),
		Contributors: domain.ContributorSummary{
			Strategy:  contributors.Strategy,
			Breakdown: contributors.Breakdown,
		},
		Issues: domain.IssueSummary{
			Sampled:        len(issues),
			Total:          domain.NoData(),
			SampleCoverage: domain.NoData(),
		},
	}

	for _, issue := range issues {
		if issue.State == domain.IssueClosed {
			report.Issues.Closed++
		} else {
			report.Issues.Open++
		}
	}
	report.ResolutionRate = ResolutionRate(report.Issues.Closed, len(issues))

	days := ResolutionDays(issues, now)
	report.MedianResolutionDays = measure(stats.Median(days))
	report.ResolutionDays = Distribute(days)

	if !contributors.Failed() {
		report.ContributorCount = domain.Value(float64(contributors.Count))
	}
	return report
}

// ResolutionRate is closed/total rounded to two decimals, or no data when total is 0.
func ResolutionRate(closed, total int) domain.Measure {
	if total <= 0 {
		return domain.NoData()
	}
	return measure(stats.Round(float64(closed)/float64(total), 2))
}

// ResolutionDays returns whole days from creation to resolution for each issue.
// Open issues count their age so far; negative ages clamp to zero.
func ResolutionDays(issues []domain.IssueRecord, now time.Time) stats.Float64Data {
	days := make(stats.Float64Data, 0, len(issues))
	for _, issue := range issues {
		d := int(issue.ResolvedAt(now).Sub(issue.CreatedAt) / day)
		if d < 0 {
			d = 0
		}
		days = append(days, float64(d))
	}
	return days
}

// Distribute summarizes resolution days. Every field is no data on empty input.
func Distribute(days stats.Float64Data) domain.Distribution {
	mean, err := stats.Mean(days)
	if err == nil {
		mean, err = stats.Round(mean, 2)
	}
	return domain.Distribution{
		Samples: days.Len(),
		Min:     measure(stats.Min(days)),
		Max:     measure(stats.Max(days)),
		Mean:    measure(mean, err),
		P90:     measure(stats.PercentileNearestRank(days, 90)),
	}
}

// Coverage is the share of all repository issues present in the sample.
func Coverage(sampled int, totals *domain.IssueTotals) domain.Measure {
	if totals == nil || totals.Total() == 0 {
		return domain.NoData()
	}
	return measure(stats.Round(float64(sampled)/float64(totals.Total()), 2))
}

// measure maps the (value, error) pairs returned by the stats package,
// which reports empty input as an error, onto a Measure.
func measure(v float64, err error) domain.Measure {
	if err != nil {
		return domain.NoData()
	}
	return domain.Value(v)
}
