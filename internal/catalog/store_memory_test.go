package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aos/pkg/platform/sentinel"
)

type CatalogStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *CatalogStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) newEntity(name string, active bool) *Entity {
	now := time.Now()
	return &Entity{
		Name:      name,
		Kind:      KindTransport,
		Info:      Info{Title: name, Features: []string{"abonnement"}},
		Active:    active,
		Payload:   TransportPayload{Route: "L1"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *CatalogStoreSuite) TestCreateAndFind() {
	entity := s.newEntity("Transport urbain", true)
	s.Require().NoError(s.store.Create(s.ctx, entity))
	s.Require().NotZero(entity.ID)

	found, err := s.store.FindByID(s.ctx, entity.ID)
	s.Require().NoError(err)
	s.Equal("Transport urbain", found.Name)
	s.Equal(TransportPayload{Route: "L1"}, found.Payload)

	_, err = s.store.FindByID(s.ctx, 999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CatalogStoreSuite) TestNameUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEntity("Colonie", true)))

	err := s.store.Create(s.ctx, s.newEntity("COLONIE", true))
	s.Require().ErrorIs(err, sentinel.ErrDuplicate)

	other := s.newEntity("Logement", true)
	s.Require().NoError(s.store.Create(s.ctx, other))

	other.Name = "Colonie"
	s.Require().ErrorIs(s.store.Update(s.ctx, other), sentinel.ErrDuplicate)
}

func (s *CatalogStoreSuite) TestListFiltersAndOrders() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEntity("A", true)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEntity("B", false)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEntity("C", true)))

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("A", all[0].Name)
	s.Equal("C", all[2].Name)

	active, err := s.store.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal("A", active[0].Name)
	s.Equal("C", active[1].Name)
}

func (s *CatalogStoreSuite) TestDelete() {
	entity := s.newEntity("Ephemere", true)
	s.Require().NoError(s.store.Create(s.ctx, entity))

	s.Require().NoError(s.store.Delete(s.ctx, entity.ID))
	_, err := s.store.FindByID(s.ctx, entity.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, entity.ID), sentinel.ErrNotFound)
}

func (s *CatalogStoreSuite) TestReturnedEntitiesAreIsolated() {
	entity := s.newEntity("Isole", true)
	s.Require().NoError(s.store.Create(s.ctx, entity))

	found, err := s.store.FindByID(s.ctx, entity.ID)
	s.Require().NoError(err)
	found.Info.Features[0] = "changed"

	again, err := s.store.FindByID(s.ctx, entity.ID)
	s.Require().NoError(err)
	s.Equal("abonnement", again.Info.Features[0])
}
