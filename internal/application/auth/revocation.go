package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

// Revoker keeps a Redis denylist of logged-out token ids until they would have expired anyway.
// A nil client disables revocation.
type Revoker struct {
	Rdb *redis.Client
}

func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r == nil || r.Rdb == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.Rdb.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.Rdb == nil || tokenID == "" {
		return false, nil
	}
	err := r.Rdb.Get(ctx, revokedPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
