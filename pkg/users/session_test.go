package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	token, err := signToken(testKey, tokenClaims{SessionId: 1234, RefreshedAt: now.UnixMilli()})
	require.NoError(t, err)

	c, err := parseToken(testKey, token, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), c.SessionId)
	assert.Equal(t, now.UnixMilli(), c.RefreshedAt)
}

func TestTokenRejections(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	token, err := signToken(testKey, tokenClaims{SessionId: 1, RefreshedAt: now.UnixMilli()})
	require.NoError(t, err)

	_, err = parseToken(testKey, "garbage", now)
	assert.ErrorIs(t, err, ErrInvalidTokenFormat)

	_, err = parseToken([]byte("another key"), token, now)
	assert.ErrorIs(t, err, ErrInvalidTokenSignature)

	_, err = parseToken(testKey, token, now.Add(SessionLifetime+time.Minute))
	assert.ErrorIs(t, err, ErrTokenExpired)
}
