// Package revocation tracks revoked access tokens by jti until they would
// have expired anyway.
package revocation

import (
	"context"
	"fmt"
	"time"

	"aos/pkg/platform/sentinel"
)

// TokenRevocationList records revoked token identifiers. Entries expire once
// the token they block would have expired.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Close()
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
