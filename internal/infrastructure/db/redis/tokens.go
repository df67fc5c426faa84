package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps revoked session token ids until the token would have
// expired anyway, and per-user cutoffs for deactivated or deleted accounts.
// Key format: revoked:<token_id>, revoked-user:<user_id> (unix seconds)
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Revoke marks tokenID revoked until the given time. Already expired tokens
// are ignored.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if userID == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedUserKey(userID), at.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

func (s *TokenStore) RevokedBefore(ctx context.Context, userID string) (time.Time, error) {
	v, err := s.client.Get(ctx, revokedUserKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("user revocation check: %w", err)
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("user revocation %q: %w", v, err)
	}
	return time.Unix(sec, 0), nil
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

func revokedUserKey(userID string) string {
	return "revoked-user:" + userID
}
