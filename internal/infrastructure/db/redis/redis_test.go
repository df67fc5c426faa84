package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "revoked:abc", revokedKey("abc"))
	assert.Equal(t, "revoked-user:u1", revokedUserKey("u1"))
	assert.Equal(t, "qc:bgrade:x", NewCache(nil, "qc").key("bgrade:x"))
	assert.Equal(t, "bgrade:x", NewCache(nil, "").key("bgrade:x"))
}

func TestTokenStore_RevokeExpiredIsNoop(t *testing.T) {
	// The client is never contacted for an already expired token.
	s := NewTokenStore(nil)
	require.NoError(t, s.Revoke(context.Background(), "abc", time.Now().Add(-time.Minute)))
	require.NoError(t, s.RevokeUser(context.Background(), "", time.Now(), time.Hour))
	require.NoError(t, s.RevokeUser(context.Background(), "u1", time.Now(), 0))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping 127.0.0.1:1")
}
