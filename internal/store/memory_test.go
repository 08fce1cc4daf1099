package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bvi/citizenship_backend/internal/citizenship"
)

type MemorySuite struct {
	suite.Suite
	ctx   context.Context
	store *Memory
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemory()
}

func (s *MemorySuite) app(applicantID string, status citizenship.Status) citizenship.Application {
	return citizenship.Application{
		ID:             "id-" + applicantID,
		ApplicantID:    applicantID,
		DisplayName:    "applicant " + applicantID,
		RobloxUsername: "rbx_" + applicantID,
		Reason:         "testing",
		CriminalRecord: "No",
		Status:         status,
		SubmittedAt:    time.Now().UTC(),
	}
}

func (s *MemorySuite) TestPutAndGet() {
	app := s.app("user-1", citizenship.StatusPending)
	s.Require().NoError(s.store.Put(s.ctx, app))

	got, err := s.store.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(app, got)
}

func (s *MemorySuite) TestGetUnknownApplicant() {
	_, err := s.store.Get(s.ctx, "ghost")
	s.Require().ErrorIs(err, citizenship.ErrNotFound)
}

func (s *MemorySuite) TestCreateIfNoPending() {
	s.Run("creates when absent", func() {
		s.Require().NoError(s.store.CreateIfNoPending(s.ctx, s.app("user-1", citizenship.StatusPending)))
	})

	s.Run("rejects a second pending record", func() {
		err := s.store.CreateIfNoPending(s.ctx, s.app("user-1", citizenship.StatusPending))
		s.Require().ErrorIs(err, citizenship.ErrDuplicatePending)
	})

	s.Run("supersedes a terminal record", func() {
		s.Require().NoError(s.store.Put(s.ctx, s.app("user-2", citizenship.StatusDeclined)))

		fresh := s.app("user-2", citizenship.StatusPending)
		fresh.ID = "id-fresh"
		s.Require().NoError(s.store.CreateIfNoPending(s.ctx, fresh))

		got, err := s.store.Get(s.ctx, "user-2")
		s.Require().NoError(err)
		s.Equal("id-fresh", got.ID)
		s.Equal(citizenship.StatusPending, got.Status)
	})
}

func (s *MemorySuite) TestListByStatus() {
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-1", citizenship.StatusPending)))
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-2", citizenship.StatusApproved)))
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-3", citizenship.StatusPending)))

	pending, err := s.store.ListByStatus(s.ctx, citizenship.StatusPending)
	s.Require().NoError(err)
	s.Len(pending, 2)

	declined, err := s.store.ListByStatus(s.ctx, citizenship.StatusDeclined)
	s.Require().NoError(err)
	s.Empty(declined)
}

func (s *MemorySuite) TestMutateAppliesUpdate() {
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-1", citizenship.StatusPending)))

	updated, err := s.store.Mutate(s.ctx, "user-1", func(app citizenship.Application) (citizenship.Application, error) {
		app.Status = citizenship.StatusApproved
		app.ReviewedBy = "admin-1"
		return app, nil
	})
	s.Require().NoError(err)
	s.Equal(citizenship.StatusApproved, updated.Status)

	got, err := s.store.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(updated, got)
}

func (s *MemorySuite) TestMutateErrorLeavesRecordUntouched() {
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-1", citizenship.StatusApproved)))

	_, err := s.store.Mutate(s.ctx, "user-1", func(app citizenship.Application) (citizenship.Application, error) {
		return app, citizenship.ErrAlreadyReviewed
	})
	s.Require().ErrorIs(err, citizenship.ErrAlreadyReviewed)

	got, err := s.store.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(citizenship.StatusApproved, got.Status)
}

func (s *MemorySuite) TestMutateUnknownApplicant() {
	_, err := s.store.Mutate(s.ctx, "ghost", func(app citizenship.Application) (citizenship.Application, error) {
		return app, nil
	})
	s.Require().ErrorIs(err, citizenship.ErrNotFound)
}

// Two concurrent reviews of the same pending record: exactly one transition
// must win, the other must observe the terminal state inside its callback.
func (s *MemorySuite) TestConcurrentMutateSerializes() {
	s.Require().NoError(s.store.Put(s.ctx, s.app("user-1", citizenship.StatusPending)))

	review := func(to citizenship.Status) error {
		_, err := s.store.Mutate(s.ctx, "user-1", func(app citizenship.Application) (citizenship.Application, error) {
			if app.Status != citizenship.StatusPending {
				return app, citizenship.ErrAlreadyReviewed
			}
			app.Status = to
			return app, nil
		})
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, to := range []citizenship.Status{citizenship.StatusApproved, citizenship.StatusDeclined} {
		wg.Add(1)
		go func(i int, to citizenship.Status) {
			defer wg.Done()
			errs[i] = review(to)
		}(i, to)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			s.Require().ErrorIs(err, citizenship.ErrAlreadyReviewed)
			lost++
		}
	}
	s.Equal(1, won)
	s.Equal(1, lost)

	got, err := s.store.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.True(got.Status.Terminal())
}
