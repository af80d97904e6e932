package request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

type RequestStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *RequestStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestRequestStoreSuite(t *testing.T) {
	suite.Run(t, new(RequestStoreSuite))
}

func (s *RequestStoreSuite) newRequest(ownerID id.AccountID) *models.Request {
	now := time.Now()
	return &models.Request{
		Description: "demande de service",
		Status:      models.RequestPending,
		OwnerID:     ownerID,
		ServiceID:   1,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}

func (s *RequestStoreSuite) TestCreateAndFind() {
	req := s.newRequest(10)
	s.Require().NoError(s.store.Create(s.ctx, req))
	s.Require().NotZero(req.ID)

	found, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.Description, found.Description)
	s.Equal(models.RequestPending, found.Status)

	_, err = s.store.FindByID(s.ctx, 999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RequestStoreSuite) TestListingsFollowInsertionOrder() {
	first := s.newRequest(10)
	second := s.newRequest(11)
	third := s.newRequest(10)
	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, third))

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(first.ID, all[0].ID)
	s.Equal(third.ID, all[2].ID)

	owned, err := s.store.ListByOwner(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(owned, 2)
	s.Equal(first.ID, owned[0].ID)
}

func (s *RequestStoreSuite) TestListByAssignee() {
	req := s.newRequest(10)
	s.Require().NoError(s.store.Create(s.ctx, req))

	assigned, err := s.store.ListByAssignee(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(assigned)

	req.ApplyAssignment(5, time.Now())
	s.Require().NoError(s.store.Update(s.ctx, req))

	assigned, err = s.store.ListByAssignee(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(req.ID, assigned[0].ID)
}

func (s *RequestStoreSuite) TestUpdateUnknownRequest() {
	req := s.newRequest(10)
	req.ID = 404
	s.Require().ErrorIs(s.store.Update(s.ctx, req), sentinel.ErrNotFound)
}

func (s *RequestStoreSuite) TestDelete() {
	req := s.newRequest(10)
	s.Require().NoError(s.store.Create(s.ctx, req))

	s.Require().NoError(s.store.Delete(s.ctx, req.ID))
	_, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, req.ID), sentinel.ErrNotFound)
}

func (s *RequestStoreSuite) TestReturnedRequestsAreIsolated() {
	req := s.newRequest(10)
	req.Justificatifs = []id.DocumentID{1, 2}
	s.Require().NoError(s.store.Create(s.ctx, req))

	found, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	found.Justificatifs[0] = 99
	found.Description = "changed"

	again, err := s.store.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(id.DocumentID(1), again.Justificatifs[0])
	s.Equal("demande de service", again.Description)
}
