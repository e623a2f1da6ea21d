package users

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/socialfeed/server/pkg/feedid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type countingLoader struct {
	calls atomic.Int32
	names map[feedid.FeedID]string
}

func (l *countingLoader) Load(_ context.Context, id feedid.FeedID) (User, error) {
	l.calls.Add(1)
	name, ok := l.names[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return User{Id: id, Username: name, Name: name}, nil
}

func newTestCache(max int) (*ProfileCache, *countingLoader, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader := &countingLoader{names: map[feedid.FeedID]string{1: "tnix", 2: "mia", 3: "sam"}}
	return NewProfileCache(loader.Load, 5*time.Minute, max, clock.Now), loader, clock
}

func TestProfileCacheReadThrough(t *testing.T) {
	cache, loader, _ := newTestCache(10)
	ctx := context.Background()

	u, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "tnix", u.Username)

	_, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestProfileCacheExpiry(t *testing.T) {
	cache, loader, clock := newTestCache(10)
	ctx := context.Background()

	_, err := cache.Get(ctx, 1)
	require.NoError(t, err)

	// a profile edit is not seen until the entry expires
	loader.names[1] = "renamed"
	clock.Advance(4*time.Minute + 59*time.Second)
	u, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "tnix", u.Username)

	clock.Advance(time.Second)
	u, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestProfileCacheMissesAreNotCached(t *testing.T) {
	cache, loader, _ := newTestCache(10)
	ctx := context.Background()

	_, err := cache.Get(ctx, 99)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	_, err = cache.Get(ctx, 99)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestProfileCacheBounded(t *testing.T) {
	cache, _, clock := newTestCache(2)
	ctx := context.Background()

	_, _ = cache.Get(ctx, 1)
	clock.Advance(time.Second)
	_, _ = cache.Get(ctx, 2)
	clock.Advance(time.Second)
	_, _ = cache.Get(ctx, 3)

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.lookup(1)
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = cache.lookup(3)
	assert.True(t, ok)
}

func TestProfileCacheGetMany(t *testing.T) {
	cache, loader, _ := newTestCache(10)

	got, err := cache.GetMany(context.Background(), []feedid.FeedID{1, 2, 1, 42})
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, "mia", got[2].Username)
	assert.Equal(t, "Unknown User", got[42].Name)
	assert.Equal(t, int32(3), loader.calls.Load())
}

func TestProfileCacheForget(t *testing.T) {
	cache, loader, _ := newTestCache(10)
	ctx := context.Background()

	_, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	loader.names[2] = "mia2"

	u, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "mia", u.Username)

	cache.Forget(2)
	u, err = cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "mia2", u.Username)
	assert.EqualValues(t, 2, loader.calls.Load())
}
