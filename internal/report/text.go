package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// TextEmitter prints the human-readable console summary.
type TextEmitter struct{}

func (TextEmitter) Emit(w io.Writer, r *domain.MetricsReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Results for %s\n", r.Repository)
	fmt.Fprintf(&b, "- Issue Resolution Rate (IRR): %s\n", withUnit(percent(r.ResolutionRate), "%"))
	fmt.Fprintf(&b, "- Median Issue Resolution Time (MIRT): %s\n", withUnit(r.MedianResolutionDays, " days"))
	fmt.Fprintf(&b, "- Contributor Count: %s\n", r.ContributorCount)

	i := r.Issues
	fmt.Fprintf(&b, "- Issues sampled: %d (%d open, %d closed; %d pull requests skipped, %d dropped)\n",
		i.Sampled, i.Open, i.Closed, i.PullRequestsSkipped, i.Dropped)
	if i.SampleCoverage.Valid {
		fmt.Fprintf(&b, "- Sample coverage: %s of %s issues\n", withUnit(percent(i.SampleCoverage), "%"), i.Total)
	}
	if r.ResolutionDays.Samples > 0 {
		d := r.ResolutionDays
		fmt.Fprintf(&b, "- Resolution days: min %s, mean %s, p90 %s, max %s\n", d.Min, d.Mean, d.P90, d.Max)
	}
	fmt.Fprintf(&b, "- Contributor strategy: %s", r.Contributors.Strategy)
	if c := r.Contributors.Breakdown; c != nil {
		fmt.Fprintf(&b, " (%d named, %d anonymous)", c.Named, c.Anonymous)
	}
	b.WriteString("\n")

	for _, l := range r.Listings {
		if l.Status != domain.ListingPartial && l.Status != domain.ListingFailed {
			continue
		}
		fmt.Fprintf(&b, "⚠️  %s %s after %d pages: %s\n", l.Name, l.Status, l.Pages, l.Error)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// percent scales a fraction to a percentage, hiding float noise such as 28.999999999999996.
func percent(m domain.Measure) domain.Measure {
	if !m.Valid {
		return m
	}
	v, err := stats.Round(m.Value*100, 2)
	if err != nil {
		return domain.NoData()
	}
	return domain.Value(v)
}

func withUnit(m domain.Measure, unit string) string {
	if !m.Valid {
		return m.String()
	}
	return m.String() + unit
}
