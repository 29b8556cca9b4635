package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers logged-out tokens until they would have expired anyway.
type Revocations struct {
	rdb redis.Cmdable
}

func NewRevocations(rdb redis.Cmdable) *Revocations {
	return &Revocations{rdb: rdb}
}

func revokedKey(jti string) string { return fmt.Sprintf("bookminder:revoked:%s", jti) }

func (r *Revocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
