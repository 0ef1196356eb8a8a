package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

func sampleReport() *domain.MetricsReport {
	return &domain.MetricsReport{
		Repository:           "octo-org/octo-repo",
		GeneratedAt:          time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		ResolutionRate:       domain.Value(0.75),
		MedianResolutionDays: domain.Value(6.5),
		ContributorCount:     domain.Value(42),
		ResolutionDays: domain.Distribution{
			Samples: 4, Min: domain.Value(2), Max: domain.Value(10), Mean: domain.Value(6.25), P90: domain.Value(10),
		},
		Issues: domain.IssueSummary{
			Open: 1, Closed: 3, Sampled: 4, PullRequestsSkipped: 1,
			Total: domain.Value(8), SampleCoverage: domain.Value(0.5),
		},
		Contributors: domain.ContributorSummary{Strategy: domain.StrategyProbe},
		Listings: []domain.ListingSummary{
			{Name: "issues[open]", Pages: 1, Records: 2, Status: domain.ListingComplete},
			{Name: "issues[closed]", Pages: 1, Records: 3, Status: domain.ListingComplete},
			{Name: "contributors", Pages: 1, Records: 1, Status: domain.ListingComplete},
		},
	}
}

func noDataReport() *domain.MetricsReport {
	return &domain.MetricsReport{
		Repository:           "octo-org/empty",
		ResolutionRate:       domain.NoData(),
		MedianResolutionDays: domain.NoData(),
		ContributorCount:     domain.NoData(),
		Contributors:         domain.ContributorSummary{Strategy: domain.StrategyWalk, Breakdown: &domain.ContributorBreakdown{}},
		Listings: []domain.ListingSummary{
			{Name: "contributors", Status: domain.ListingFailed, Error: "403 forbidden"},
		},
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"text", "JSON", " yaml ", "prometheus"} {
		e, err := New(format)
		require.NoError(t, err, format)
		assert.NotNil(t, e)
	}
	_, err := New("csv")
	assert.ErrorContains(t, err, "unknown output format")
	assert.Equal(t, []string{"json", "prometheus", "text", "yaml"}, Formats())
}

func TestTextEmitter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextEmitter{}.Emit(&buf, sampleReport()))

	assert.Equal(t, `📊 Results for octo-org/octo-repo
- Issue Resolution Rate (IRR): 75%
- Median Issue Resolution Time (MIRT): 6.5 days
- Contributor Count: 42
- Issues sampled: 4 (1 open, 3 closed; 1 pull requests skipped, 0 dropped)
- Sample coverage: 50% of 8 issues
- Resolution days: min 2, mean 6.25, p90 10, max 10
- Contributor strategy: probe
`, buf.String())
}

func TestTextEmitter_NoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextEmitter{}.Emit(&buf, noDataReport()))

	out := buf.String()
	assert.Contains(t, out, "- Issue Resolution Rate (IRR): no data\n")
	assert.Contains(t, out, "- Median Issue Resolution Time (MIRT): no data\n")
	assert.Contains(t, out, "- Contributor Count: no data\n")
	assert.Contains(t, out, "- Contributor strategy: walk (0 named, 0 anonymous)\n")
	assert.Contains(t, out, "contributors failed after 0 pages: 403 forbidden")
	assert.NotContains(t, out, "Sample coverage")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, domain.Value(29), percent(domain.Value(0.29)))
	assert.Equal(t, domain.NoData(), percent(domain.NoData()))
}

func TestJSONEmitter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONEmitter{}.Emit(&buf, noDataReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"resolution_rate", "median_resolution_days", "contributor_count"} {
		v, ok := decoded[key]
		assert.True(t, ok, "%s must be present", key)
		assert.Nil(t, v, "%s must be null", key)
	}

	buf.Reset()
	require.NoError(t, JSONEmitter{}.Emit(&buf, sampleReport()))
	var back domain.MetricsReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, domain.Value(0.75), back.ResolutionRate)
	assert.Equal(t, domain.Value(6.5), back.MedianResolutionDays)
	assert.Equal(t, domain.Value(42), back.ContributorCount)
}

func TestYAMLEmitter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAMLEmitter{}.Emit(&buf, noDataReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "octo-org/empty", decoded["repository"])
	assert.Contains(t, decoded, "resolution_rate")
	assert.Nil(t, decoded["resolution_rate"])
	assert.Contains(t, buf.String(), "status: failed")
}

func TestPrometheusEmitter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrometheusEmitter{}.Emit(&buf, sampleReport()))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)

	rate := families["community_issue_resolution_rate"]
	require.NotNil(t, rate)
	require.Len(t, rate.GetMetric(), 1)
	assert.Equal(t, 0.75, rate.GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, "repository", rate.GetMetric()[0].GetLabel()[0].GetName())
	assert.Equal(t, "octo-org/octo-repo", rate.GetMetric()[0].GetLabel()[0].GetValue())

	assert.Equal(t, 6.5, families["community_issue_median_resolution_days"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 42.0, families["community_contributors"].GetMetric()[0].GetGauge().GetValue())
	assert.Len(t, families["community_issues_sampled"].GetMetric(), 2)
}

func TestPrometheusEmitter_OmitsNoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrometheusEmitter{}.Emit(&buf, noDataReport()))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)

	assert.NotContains(t, families, "community_issue_resolution_rate")
	assert.NotContains(t, families, "community_contributors")
	assert.Contains(t, families, "community_issues_sampled")
}
