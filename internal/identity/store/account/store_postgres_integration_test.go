//go:build integration

package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aos/internal/identity/models"
	"aos/pkg/platform/sentinel"
	"aos/pkg/testutil/containers"
)

type PostgresAccountStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func (s *PostgresAccountStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T(), "../../../../db/schema.sql")
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresAccountStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "accounts"))
}

func TestPostgresAccountStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresAccountStoreSuite))
}

func (s *PostgresAccountStoreSuite) newAccount(email string, roles ...models.Role) *models.Account {
	if len(roles) == 0 {
		roles = []models.Role{models.RoleUser}
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Account{
		FirstName:    "Test",
		LastName:     "Account",
		Email:        email,
		PasswordHash: "hash",
		Enabled:      true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresAccountStoreSuite) TestCreateAndFindRoundTrip() {
	account := s.newAccount("alice@example.com", models.RoleSupport, models.RoleAgent)
	s.Require().NoError(s.store.Create(s.ctx, account))
	s.Require().NotZero(account.ID)

	found, err := s.store.FindByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", found.Email)
	s.ElementsMatch([]models.Role{models.RoleSupport, models.RoleAgent}, found.Roles)

	byEmail, err := s.store.FindByEmail(s.ctx, "ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, byEmail.ID)

	_, err = s.store.FindByID(s.ctx, 9999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresAccountStoreSuite) TestUniqueIndexes() {
	s.Run("duplicate email regardless of case", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newAccount("dup@example.com")))
		err := s.store.Create(s.ctx, s.newAccount("DUP@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("duplicate national id", func() {
		first := s.newAccount("n1@example.com")
		first.NationalID = "AB123456"
		s.Require().NoError(s.store.Create(s.ctx, first))

		second := s.newAccount("n2@example.com")
		second.NationalID = "AB123456"
		s.Require().ErrorIs(s.store.Create(s.ctx, second), sentinel.ErrDuplicate)
	})

	s.Run("empty national id is not a collision", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newAccount("e1@example.com")))
		s.Require().NoError(s.store.Create(s.ctx, s.newAccount("e2@example.com")))
	})
}

func (s *PostgresAccountStoreSuite) TestListByRole() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAccount("u@example.com", models.RoleUser)))
	s.Require().NoError(s.store.Create(s.ctx, s.newAccount("s1@example.com", models.RoleSupport, models.RoleAgent)))
	s.Require().NoError(s.store.Create(s.ctx, s.newAccount("s2@example.com", models.RoleSupport, models.RoleAgent)))

	supports, err := s.store.ListByRole(s.ctx, models.RoleSupport)
	s.Require().NoError(err)
	s.Len(supports, 2)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PostgresAccountStoreSuite) TestSpecializationLifecycle() {
	account := s.newAccount("admin@example.com", models.RoleAdmin)
	s.Require().NoError(s.store.Create(s.ctx, account))

	roles := []models.Role{models.RoleAdmin, models.RoleAgent}
	s.Require().NoError(s.store.CreateSpecializations(s.ctx, account.ID, roles))

	specs, err := s.store.ListSpecializations(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(specs, 2)

	s.Require().NoError(s.store.DeleteSpecializations(s.ctx, account.ID, []models.Role{models.RoleAdmin}))
	specs, err = s.store.ListSpecializations(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Len(specs, 1)
	s.Equal(models.RoleAgent, specs[0].Role)
}

func (s *PostgresAccountStoreSuite) TestUpdateReplacesRoles() {
	account := s.newAccount("mut@example.com", models.RoleSupport, models.RoleAgent)
	s.Require().NoError(s.store.Create(s.ctx, account))

	account.Roles = []models.Role{models.RoleAdmin}
	account.Department = "Logistics"
	s.Require().NoError(s.store.Update(s.ctx, account))

	found, err := s.store.FindByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal([]models.Role{models.RoleAdmin}, found.Roles)
	s.Equal("Logistics", found.Department)
}

func (s *PostgresAccountStoreSuite) TestDeleteCascadesOwnedRows() {
	account := s.newAccount("gone@example.com", models.RoleSupport)
	s.Require().NoError(s.store.Create(s.ctx, account))
	s.Require().NoError(s.store.CreateSpecializations(s.ctx, account.ID, []models.Role{models.RoleSupport}))

	s.Require().NoError(s.store.Delete(s.ctx, account.ID))

	_, err := s.store.FindByID(s.ctx, account.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	specs, err := s.store.ListSpecializations(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Empty(specs)

	s.Require().ErrorIs(s.store.Delete(s.ctx, account.ID), sentinel.ErrNotFound)
}
