package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsAndRates(t *testing.T) {
	tr := NewTracker()

	for i := 0; i < 4; i++ {
		tr.RecordSubmitted()
	}
	tr.RecordApproved()
	tr.RecordApproved()
	tr.RecordApproved()
	tr.RecordDeclined()
	tr.RecordStatusCheck()

	s := tr.Snapshot()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 0, s.Pending)
	assert.Equal(t, 3, s.Approved)
	assert.Equal(t, 1, s.Declined)
	assert.Equal(t, 1, s.StatusChecks)
	assert.InDelta(t, 75.0, s.ApprovalRate, 0.001)
	assert.InDelta(t, 25.0, s.DeclineRate, 0.001)
}

func TestTrackerRatesZeroWhenNothingReviewed(t *testing.T) {
	tr := NewTracker()
	tr.RecordSubmitted()

	s := tr.Snapshot()
	assert.Zero(t, s.ApprovalRate)
	assert.Zero(t, s.DeclineRate)
	assert.Equal(t, 1, s.Pending)
}

func TestTrackerRollingWindows(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	tr := NewTracker()
	tr.now = func() time.Time { return current }

	tr.RecordSubmitted() // 20 days before the snapshot
	current = base.Add(14 * 24 * time.Hour)
	tr.RecordSubmitted() // 6 days before
	current = base.Add(19 * 24 * time.Hour)
	tr.RecordSubmitted() // 1 day before
	current = base.Add(20 * 24 * time.Hour)

	s := tr.Snapshot()
	assert.Equal(t, 1, s.Daily)
	assert.Equal(t, 2, s.Weekly)
	assert.Equal(t, 3, s.Monthly)
}

func TestTrackerPrunesOldSubmissions(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	tr := NewTracker()
	tr.now = func() time.Time { return current }

	tr.RecordSubmitted()
	current = base.Add(31 * 24 * time.Hour)
	tr.RecordSubmitted()

	s := tr.Snapshot()
	assert.Equal(t, 1, s.Monthly)
	// Totals are lifetime counters and are not pruned with the windows.
	assert.Equal(t, 2, s.Total)
}

func TestTrackerPendingNeverNegative(t *testing.T) {
	tr := NewTracker()
	tr.RecordApproved()
	tr.RecordDeclined()
	assert.Equal(t, 0, tr.Snapshot().Pending)
}

func TestTrackerConcurrentUse(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordSubmitted()
			tr.RecordApproved()
			tr.RecordStatusCheck()
		}()
	}
	wg.Wait()

	s := tr.Snapshot()
	assert.Equal(t, 50, s.Total)
	assert.Equal(t, 50, s.Approved)
	assert.Equal(t, 50, s.StatusChecks)
}
