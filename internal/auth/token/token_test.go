package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aos/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)

	signed, issued, err := svc.Issue(42, "ADMIN", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, issued.ID, "every token carries a jti")

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.AccountID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "aos-test", claims.Issuer)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestIssueGeneratesUniqueTokenIDs(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)

	_, first, err := svc.Issue(1, "USER", time.Now())
	require.NoError(t, err)
	_, second, err := svc.Issue(1, "USER", time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)

	signed, _, err := svc.Issue(7, "USER", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)
	other := NewService("another-key", "aos-test", time.Hour)

	signed, _, err := other.Issue(7, "USER", time.Now())
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsNonHMACAlgorithm(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{AccountID: "7"})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "aos-test", time.Hour)

	_, err := svc.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
