package networks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	network, err := ParseNetwork("10.0.0.0/8")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", network.String())

	network, err = ParseNetwork("192.0.2.7")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7/32", network.String())

	network, err = ParseNetwork("2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1/128", network.String())

	_, err = ParseNetwork("not an ip")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestBlocklist(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	l := NewBlocklist(func() time.Time { return now })

	require.NoError(t, l.Add(Block{Id: 1, Address: "10.0.0.0/8"}))
	require.NoError(t, l.Add(Block{Id: 2, Address: "192.0.2.7", ExpiresAt: now.UnixMilli() - 1}))

	blocked, err := l.IsBlocked("10.1.2.3")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = l.IsBlocked("192.0.2.7")
	require.NoError(t, err)
	assert.False(t, blocked, "expired blocks don't apply")

	blocked, err = l.IsBlocked("8.8.8.8")
	require.NoError(t, err)
	assert.False(t, blocked)

	_, err = l.IsBlocked("")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	l.Remove(1)
	blocked, err = l.IsBlocked("10.1.2.3")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Len(t, l.List(), 1)
}

func TestBlocklistSameNetwork(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	l := NewBlocklist(func() time.Time { return now })

	require.NoError(t, l.Add(Block{Id: 1, Address: "192.0.2.0/24"}))
	require.NoError(t, l.Add(Block{Id: 2, Address: "192.0.2.0/24", ExpiresAt: now.UnixMilli() - 1}))

	blocked, err := l.IsBlocked("192.0.2.10")
	require.NoError(t, err)
	assert.True(t, blocked, "permanent block outranks an expired one")

	l.Remove(1)
	blocked, err = l.IsBlocked("192.0.2.10")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.Len(t, l.List(), 1)
	assert.Equal(t, int64(2), l.List()[0].Id)
}
