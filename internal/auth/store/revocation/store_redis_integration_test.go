//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aos/pkg/platform/sentinel"
	"aos/pkg/testutil/containers"
)

type RedisTRLSuite struct {
	suite.Suite
	rc  *containers.RedisContainer
	trl *RedisTRL
	ctx context.Context
}

func (s *RedisTRLSuite) SetupSuite() {
	s.ctx = context.Background()
	s.rc = containers.NewRedisContainer(s.T())
	s.trl = NewRedisTRL(s.rc.Client)
}

func (s *RedisTRLSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(s.ctx))
}

func TestRedisTRLSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(RedisTRLSuite))
}

func (s *RedisTRLSuite) TestRevokeAndCheck() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-1", time.Hour))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.trl.IsRevoked(s.ctx, "jti-unknown")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestRevocationExpires() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-short", 100*time.Millisecond))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti-short")
	s.Require().NoError(err)
	s.True(revoked)

	time.Sleep(200 * time.Millisecond)

	revoked, err = s.trl.IsRevoked(s.ctx, "jti-short")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestEmptyJTIIsNoOp() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "", time.Hour))

	revoked, err := s.trl.IsRevoked(s.ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestInvalidTTL() {
	s.Require().ErrorIs(s.trl.RevokeToken(s.ctx, "jti-x", -time.Second), sentinel.ErrInvalidState)
}
