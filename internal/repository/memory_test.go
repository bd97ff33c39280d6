package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

type MemoryComplaintRepositorySuite struct {
	suite.Suite
	repo *MemoryComplaintRepository
	now  time.Time
}

func TestMemoryComplaintRepositorySuite(t *testing.T) {
	suite.Run(t, new(MemoryComplaintRepositorySuite))
}

func (s *MemoryComplaintRepositorySuite) SetupTest() {
	s.repo = NewMemoryComplaintRepository()
	s.now = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryComplaintRepositorySuite) newComplaint(d domain.Domain) *domain.Complaint {
	submitter := domain.Submitter{
		Name:          "A",
		RollNumber:    "R1",
		Stream:        "CS",
		Phone:         "9999999999",
		Email:         "a@x.com",
		ComplaintText: "Monitor broken",
	}
	if d == domain.DomainLab {
		lab := "Lab 101"
		submitter.LabNumber = &lab
	}
	return domain.NewComplaint(uuid.NewString(), d, submitter, nil, "", s.now)
}

func (s *MemoryComplaintRepositorySuite) TestListKeepsInsertionOrderPerDomain() {
	ctx := context.Background()
	var labIDs []string
	for i := 0; i < 3; i++ {
		c := s.newComplaint(domain.DomainLab)
		s.Require().NoError(s.repo.Create(ctx, c))
		labIDs = append(labIDs, c.ID)
		s.Require().NoError(s.repo.Create(ctx, s.newComplaint(domain.DomainICC)))
	}

	labs, err := s.repo.List(ctx, domain.DomainLab)
	s.Require().NoError(err)
	s.Require().Len(labs, 3)
	for i, c := range labs {
		s.Equal(labIDs[i], c.ID)
		s.Equal(domain.DomainLab, c.Domain)
	}

	iccs, err := s.repo.List(ctx, domain.DomainICC)
	s.Require().NoError(err)
	s.Len(iccs, 3)
}

func (s *MemoryComplaintRepositorySuite) TestGetIsDomainScoped() {
	ctx := context.Background()
	c := s.newComplaint(domain.DomainICC)
	s.Require().NoError(s.repo.Create(ctx, c))

	found, err := s.repo.Get(ctx, domain.DomainICC, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)

	_, err = s.repo.Get(ctx, domain.DomainLab, c.ID)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.repo.Get(ctx, domain.DomainICC, uuid.NewString())
	s.ErrorIs(err, ErrNotFound)
	_, err = s.repo.ApplyTransition(ctx, domain.DomainLab, c.ID, domain.StatusResolved, s.now)
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryComplaintRepositorySuite) TestReturnedComplaintsAreCopies() {
	ctx := context.Background()
	c := s.newComplaint(domain.DomainLab)
	s.Require().NoError(s.repo.Create(ctx, c))

	found, err := s.repo.Get(ctx, domain.DomainLab, c.ID)
	s.Require().NoError(err)
	found.Status = domain.StatusResolved
	found.StatusHistory = append(found.StatusHistory, domain.StatusChange{Status: domain.StatusResolved})
	*found.Submitter.LabNumber = "Lab 999"

	again, err := s.repo.Get(ctx, domain.DomainLab, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, again.Status)
	s.Len(again.StatusHistory, 1)
	s.Equal("Lab 101", *again.Submitter.LabNumber)
}

func (s *MemoryComplaintRepositorySuite) TestApplyTransition() {
	ctx := context.Background()
	c := s.newComplaint(domain.DomainLab)
	s.Require().NoError(s.repo.Create(ctx, c))

	s.Run("applies a new status and appends history", func() {
		res, err := s.repo.ApplyTransition(ctx, domain.DomainLab, c.ID, domain.StatusInProgress, s.now.Add(time.Minute))
		s.Require().NoError(err)
		s.True(res.Applied)
		s.Equal(domain.StatusPending, res.Previous)
		s.Equal(domain.StatusInProgress, res.Complaint.Status)
		s.Len(res.Complaint.StatusHistory, 2)
	})

	s.Run("same status writes nothing", func() {
		res, err := s.repo.ApplyTransition(ctx, domain.DomainLab, c.ID, domain.StatusInProgress, s.now.Add(2*time.Minute))
		s.Require().NoError(err)
		s.False(res.Applied)
		s.Len(res.Complaint.StatusHistory, 2)
		s.Equal(s.now.Add(time.Minute), res.Complaint.UpdatedAt)
	})

	s.Run("cancelled context leaves the complaint untouched", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.repo.ApplyTransition(cancelled, domain.DomainLab, c.ID, domain.StatusResolved, s.now)
		s.ErrorIs(err, context.Canceled)

		found, err := s.repo.Get(ctx, domain.DomainLab, c.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusInProgress, found.Status)
		s.Len(found.StatusHistory, 2)
	})
}

func (s *MemoryComplaintRepositorySuite) TestConcurrentTransitionsSerializePerID() {
	ctx := context.Background()
	c := s.newComplaint(domain.DomainLab)
	s.Require().NoError(s.repo.Create(ctx, c))

	targets := []domain.ComplaintStatus{domain.StatusInProgress, domain.StatusResolved}
	const rounds = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < rounds; i++ {
		for _, target := range targets {
			wg.Add(1)
			go func(target domain.ComplaintStatus) {
				defer wg.Done()
				res, err := s.repo.ApplyTransition(ctx, domain.DomainLab, c.ID, target, time.Now())
				s.NoError(err)
				if res.Applied {
					mu.Lock()
					applied++
					mu.Unlock()
				}
			}(target)
		}
	}
	wg.Wait()

	found, err := s.repo.Get(ctx, domain.DomainLab, c.ID)
	s.Require().NoError(err)
	s.Len(found.StatusHistory, applied+1)
	s.Equal(found.Status, found.StatusHistory[len(found.StatusHistory)-1].Status)
	for i := 1; i < len(found.StatusHistory); i++ {
		s.NotEqual(found.StatusHistory[i-1].Status, found.StatusHistory[i].Status, "no duplicate consecutive entries")
	}
}

type MemoryAdminRepositorySuite struct {
	suite.Suite
	repo *MemoryAdminRepository
}

func TestMemoryAdminRepositorySuite(t *testing.T) {
	suite.Run(t, new(MemoryAdminRepositorySuite))
}

func (s *MemoryAdminRepositorySuite) SetupTest() {
	s.repo = NewMemoryAdminRepository()
}

func (s *MemoryAdminRepositorySuite) TestEmailIsUniquePerDomain() {
	ctx := context.Background()
	icc := &domain.Admin{ID: uuid.NewString(), Domain: domain.DomainICC, Email: "admin@x.com", Name: "I"}
	s.Require().NoError(s.repo.Create(ctx, icc))

	dup := &domain.Admin{ID: uuid.NewString(), Domain: domain.DomainICC, Email: "ADMIN@x.com", Name: "I2"}
	s.ErrorIs(s.repo.Create(ctx, dup), ErrDuplicate)

	lab := &domain.Admin{ID: uuid.NewString(), Domain: domain.DomainLab, Email: "admin@x.com", Name: "L"}
	s.NoError(s.repo.Create(ctx, lab))

	found, err := s.repo.GetByEmail(ctx, domain.DomainLab, "admin@x.com")
	s.Require().NoError(err)
	s.Equal(lab.ID, found.ID)

	_, err = s.repo.GetByID(ctx, domain.DomainLab, icc.ID)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.repo.GetByEmail(ctx, domain.DomainICC, "nobody@x.com")
	s.ErrorIs(err, ErrNotFound)
}
