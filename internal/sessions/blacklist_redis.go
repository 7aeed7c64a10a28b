package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked session tokens until they would expire anyway.
// A nil client disables it: every operation is a no-op.
type Blacklist struct {
	client *redis.Client
	prefix string
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, prefix: "blacklist:session:"}
}

// Revoke stores the token id with TTL.
func (b *Blacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.prefix+tokenID, "1", ttl).Err()
}

// IsRevoked returns true when the token id exists in the blacklist.
func (b *Blacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	exists, err := b.client.Exists(ctx, b.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
