// Package stats keeps rolling, in-process application statistics for the
// admin dashboard. Aggregates survive record supersession, so history is
// visible even though the store keeps one record per applicant.
package stats

import (
	"sync"
	"time"
)

// Statistics is a point-in-time snapshot of application activity.
type Statistics struct {
	Total        int
	Pending      int
	Approved     int
	Declined     int
	StatusChecks int

	// Percentages over reviewed applications; zero when nothing is reviewed.
	ApprovalRate float64
	DeclineRate  float64

	// Submission counts over rolling windows.
	Daily   int
	Weekly  int
	Monthly int
}

// Tracker accumulates counters. Safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	total        int
	pending      int
	approved     int
	declined     int
	statusChecks int
	submissions  []time.Time

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

func (t *Tracker) RecordSubmitted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.pending++
	t.submissions = append(t.submissions, t.now())
	t.prune()
}

func (t *Tracker) RecordApproved() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approved++
	if t.pending > 0 {
		t.pending--
	}
}

func (t *Tracker) RecordDeclined() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.declined++
	if t.pending > 0 {
		t.pending--
	}
}

func (t *Tracker) RecordStatusCheck() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusChecks++
}

// Snapshot returns the current statistics.
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Statistics{
		Total:        t.total,
		Pending:      t.pending,
		Approved:     t.approved,
		Declined:     t.declined,
		StatusChecks: t.statusChecks,
	}
	if reviewed := t.approved + t.declined; reviewed > 0 {
		s.ApprovalRate = float64(t.approved) / float64(reviewed) * 100
		s.DeclineRate = float64(t.declined) / float64(reviewed) * 100
	}
	now := t.now()
	for _, at := range t.submissions {
		age := now.Sub(at)
		if age <= 24*time.Hour {
			s.Daily++
		}
		if age <= 7*24*time.Hour {
			s.Weekly++
		}
		if age <= 30*24*time.Hour {
			s.Monthly++
		}
	}
	return s
}

// prune drops submissions older than the widest window. Caller holds mu.
func (t *Tracker) prune() {
	cutoff := t.now().Add(-30 * 24 * time.Hour)
	keep := t.submissions[:0]
	for _, at := range t.submissions {
		if at.After(cutoff) {
			keep = append(keep, at)
		}
	}
	t.submissions = keep
}
