package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListPage(ctx context.Context, q domain.PageQuery) (*domain.Page, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *mockFetcher) FetchIssueTotals(ctx context.Context) (*domain.IssueTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssueTotals), args.Error(1)
}

// rawRecords returns n distinct placeholder records starting at id start.
func rawRecords(start, n int) []domain.RawRecord {
	recs := make([]domain.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, domain.RawRecord(fmt.Sprintf(`{"id":%d}`, start+i)))
	}
	return recs
}

func issueJSON(id int64, state, createdAt, closedAt string) domain.RawRecord {
	closed := "null"
	if closedAt != "" {
		closed = fmt.Sprintf("%q", closedAt)
	}
	return domain.RawRecord(fmt.Sprintf(`{"id":%d,"number":%d,"state":%q,"created_at":%q,"closed_at":%s}`, id, id, state, createdAt, closed))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
