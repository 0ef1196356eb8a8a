package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

var (
	errUnknownState    = errors.New("unknown issue state")
	errMissingClosedAt = errors.New("closed issue has no closed_at")
	errClosedBeforeNew = errors.New("closed_at is before created_at")
)

// rawIssue is the subset of the issue payload the normalizer reads.
// Timestamps stay strings so each record reports its own parse failure.
type rawIssue struct {
	ID          int64   `json:"id"`
	Number      int     `json:"number"`
	State       string  `json:"state"`
	CreatedAt   string  `json:"created_at"`
	ClosedAt    *string `json:"closed_at"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`
}

type rawContributor struct {
	Type string `json:"type"`
}

// NormalizeResult is the outcome of normalizing issue records.
type NormalizeResult struct {
	Issues       []domain.IssueRecord
	PullRequests int
	Dropped      []error
}

// Normalizer turns raw issue payloads into IssueRecords.
type Normalizer struct {
	logger logrus.FieldLogger
}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer(logger logrus.FieldLogger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize skips pull requests, drops records that cannot be mapped and
// collapses duplicate ids (closed wins). Output order is not significant.
func (n *Normalizer) Normalize(raw []domain.RawRecord) NormalizeResult {
	var result NormalizeResult
	seen := make(map[int64]int, len(raw))

	for i, rec := range raw {
		var payload rawIssue
		if err := json.Unmarshal(rec, &payload); err != nil {
			result.Dropped = append(result.Dropped, n.drop(&domain.RecordError{Index: i, Err: err}))
			continue
		}
		if payload.PullRequest != nil {
			result.PullRequests++
			continue
		}
		issue, err := toIssueRecord(payload)
		if err != nil {
			result.Dropped = append(result.Dropped, n.drop(&domain.RecordError{Index: i, ID: payload.ID, Err: err}))
			continue
		}

		if at, ok := seen[issue.ID]; ok {
			if issue.State == domain.IssueClosed {
				result.Issues[at] = issue
			}
			continue
		}
		seen[issue.ID] = len(result.Issues)
		result.Issues = append(result.Issues, issue)
	}
	return result
}

func (n *Normalizer) drop(err *domain.RecordError) error {
	n.logger.WithError(err).Warn("Dropping record that could not be normalized")
	return err
}

func toIssueRecord(p rawIssue) (domain.IssueRecord, error) {
	createdAt, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("invalid created_at: %w", err)
	}
	issue := domain.IssueRecord{
		ID:        p.ID,
		Number:    p.Number,
		CreatedAt: createdAt,
	}

	switch domain.IssueState(p.State) {
	case domain.IssueOpen:
		issue.State = domain.IssueOpen
	case domain.IssueClosed:
		if p.ClosedAt == nil {
			return domain.IssueRecord{}, errMissingClosedAt
		}
		closedAt, err := time.Parse(time.RFC3339, *p.ClosedAt)
		if err != nil {
			return domain.IssueRecord{}, fmt.Errorf("invalid closed_at: %w", err)
		}
		if closedAt.Before(createdAt) {
			return domain.IssueRecord{}, errClosedBeforeNew
		}
		issue.State = domain.IssueClosed
		issue.ClosedAt = &closedAt
	default:
		return domain.IssueRecord{}, fmt.Errorf("%w %q", errUnknownState, p.State)
	}
	return issue, nil
}

// ClassifyContributors splits contributor payloads into named accounts and
// anonymous (email-only) entries. Unreadable entries count as named.
func ClassifyContributors(raw []domain.RawRecord) (named, anonymous int) {
	for _, rec := range raw {
		var c rawContributor
		if err := json.Unmarshal(rec, &c); err == nil && c.Type == "Anonymous" {
			anonymous++
			continue
		}
		named++
	}
	return named, anonymous
}
