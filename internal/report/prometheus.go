package report

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

const metricPrefix = "community_"

// PrometheusEmitter writes gauges in the text exposition format, suitable for the
// node_exporter textfile collector. Series without data are left out.
type PrometheusEmitter struct{}

func (PrometheusEmitter) Emit(w io.Writer, r *domain.MetricsReport) error {
	repo := label("repository", r.Repository)
	families := []*dto.MetricFamily{
		gaugeFamily("issue_resolution_rate", "Share of sampled issues that are closed.", r.ResolutionRate, repo),
		gaugeFamily("issue_median_resolution_days", "Median whole days from creation to close, or age for open issues.", r.MedianResolutionDays, repo),
		gaugeFamily("contributors", "Number of repository contributors.", r.ContributorCount, repo),
		gaugeFamily("issue_sample_coverage", "Share of all repository issues present in the sample.", r.Issues.SampleCoverage, repo),
		{
			Name: str(metricPrefix + "issues_sampled"),
			Help: str("Issues in the sample by state."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				gauge(float64(r.Issues.Open), repo, label("state", string(domain.IssueOpen))),
				gauge(float64(r.Issues.Closed), repo, label("state", string(domain.IssueClosed))),
			},
		},
	}

	for _, mf := range families {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func gaugeFamily(name, help string, m domain.Measure, labels ...*dto.LabelPair) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: str(metricPrefix + name),
		Help: str(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	if m.Valid {
		mf.Metric = []*dto.Metric{gauge(m.Value, labels...)}
	}
	return mf
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: &v},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: str(name), Value: str(value)}
}

func str(s string) *string { return &s }
