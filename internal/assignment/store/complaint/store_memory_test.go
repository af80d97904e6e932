package complaint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

type ComplaintStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *ComplaintStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestComplaintStoreSuite(t *testing.T) {
	suite.Run(t, new(ComplaintStoreSuite))
}

func (s *ComplaintStoreSuite) newComplaint(ownerID id.AccountID) *models.Complaint {
	now := time.Now()
	return &models.Complaint{
		Description: "reclamation",
		Status:      models.ComplaintPending,
		OwnerID:     ownerID,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}

func (s *ComplaintStoreSuite) TestCreateAndFind() {
	c := s.newComplaint(10)
	s.Require().NoError(s.store.Create(s.ctx, c))
	s.Require().NotZero(c.ID)

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.ComplaintPending, found.Status)

	_, err = s.store.FindByID(s.ctx, 999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ComplaintStoreSuite) TestCountByOwner() {
	s.Require().NoError(s.store.Create(s.ctx, s.newComplaint(10)))
	s.Require().NoError(s.store.Create(s.ctx, s.newComplaint(10)))
	s.Require().NoError(s.store.Create(s.ctx, s.newComplaint(11)))

	count, err := s.store.CountByOwner(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountByOwner(s.ctx, 404)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ComplaintStoreSuite) TestListByAssignee() {
	c := s.newComplaint(10)
	s.Require().NoError(s.store.Create(s.ctx, c))

	c.ApplyAssignment(5, time.Now())
	s.Require().NoError(s.store.Update(s.ctx, c))

	assigned, err := s.store.ListByAssignee(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(c.ID, assigned[0].ID)

	c.ApplyUnassignment(time.Now(), false)
	s.Require().NoError(s.store.Update(s.ctx, c))

	assigned, err = s.store.ListByAssignee(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(assigned)
}

func (s *ComplaintStoreSuite) TestUpdateUnknownComplaint() {
	c := s.newComplaint(10)
	c.ID = 404
	s.Require().ErrorIs(s.store.Update(s.ctx, c), sentinel.ErrNotFound)
}

func (s *ComplaintStoreSuite) TestReturnedComplaintsAreIsolated() {
	c := s.newComplaint(10)
	s.Require().NoError(s.store.Create(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	found.Description = "changed"

	again, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("reclamation", again.Description)
}
