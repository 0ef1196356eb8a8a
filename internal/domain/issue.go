// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawRecord is one undecoded entry of a listing page.
type RawRecord = json.RawMessage

// IssueState is the lifecycle state of a tracked issue.
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// IssueRecord is a normalized issue. ClosedAt is set if and only if State is IssueClosed.
type IssueRecord struct {
	ID        int64
	Number    int
	State     IssueState
	CreatedAt time.Time
	ClosedAt  *time.Time
}

// ResolvedAt returns the time the issue stopped accruing resolution time:
// its close time when closed, otherwise now.
func (r IssueRecord) ResolvedAt(now time.Time) time.Time {
	if r.State == IssueClosed && r.ClosedAt != nil {
		return *r.ClosedAt
	}
	return now
}

// RecordError describes a raw record that was dropped during normalization.
type RecordError struct {
	Index int
	ID    int64
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("record %d (id %d): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
