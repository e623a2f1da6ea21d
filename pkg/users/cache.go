package users

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/socialfeed/server/pkg/feedid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultProfileTTL  = 5 * time.Minute
	DefaultProfileSize = 10_000
)

type LoadFunc func(ctx context.Context, id feedid.FeedID) (User, error)

type cacheEntry struct {
	user     User
	cachedAt time.Time
}

// ProfileCache is a read-through user lookup cache. Entries expire a fixed
// time after they were loaded. Updates made by other processes only show up
// once the entry expires.
type ProfileCache struct {
	load LoadFunc
	ttl  time.Duration
	max  int
	now  func() time.Time

	mu      sync.Mutex
	entries map[feedid.FeedID]cacheEntry
	group   singleflight.Group
}

// Profiles is the process-wide cache used to hydrate post and comment authors.
var Profiles = NewProfileCache(GetUser, DefaultProfileTTL, DefaultProfileSize, time.Now)

func InitProfileCache(ttl time.Duration, size int) {
	Profiles = NewProfileCache(GetUser, ttl, size, time.Now)
}

func NewProfileCache(load LoadFunc, ttl time.Duration, max int, now func() time.Time) *ProfileCache {
	if max <= 0 {
		max = DefaultProfileSize
	}
	return &ProfileCache{
		load:    load,
		ttl:     ttl,
		max:     max,
		now:     now,
		entries: make(map[feedid.FeedID]cacheEntry),
	}
}

// Get returns the cached profile or loads it on a miss. Concurrent misses for
// the same id share one load. Missing users are not cached.
func (c *ProfileCache) Get(ctx context.Context, id feedid.FeedID) (User, error) {
	if u, ok := c.lookup(id); ok {
		return u, nil
	}

	v, err, _ := c.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		u, err := c.load(ctx, id)
		if err != nil {
			return u, err
		}
		c.store(id, u)
		return u, nil
	})
	if err != nil {
		return User{}, err
	}
	return v.(User), nil
}

// GetMany resolves a set of ids concurrently. Unknown ids map to Unknown().
func (c *ProfileCache) GetMany(ctx context.Context, ids []feedid.FeedID) (map[feedid.FeedID]User, error) {
	out := make(map[feedid.FeedID]User, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for _, id := range ids {
		mu.Lock()
		_, seen := out[id]
		if !seen {
			out[id] = Unknown()
		}
		mu.Unlock()
		if seen {
			continue
		}

		id := id
		g.Go(func() error {
			u, err := c.Get(ctx, id)
			if err == ErrUserNotFound {
				return nil
			} else if err != nil {
				return err
			}
			mu.Lock()
			out[id] = u
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Forget drops id so the next Get loads it again.
func (c *ProfileCache) Forget(id feedid.FeedID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ProfileCache) lookup(id feedid.FeedID) (User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return User{}, false
	}
	if c.now().Sub(e.cachedAt) >= c.ttl {
		delete(c.entries, id)
		return User{}, false
	}
	return e.user, true
}

func (c *ProfileCache) store(id feedid.FeedID, u User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[id]; !ok && len(c.entries) >= c.max {
		c.evict(now)
	}
	c.entries[id] = cacheEntry{user: u, cachedAt: now}
}

// evict drops expired entries, and the oldest one if that freed nothing.
// Caller holds mu.
func (c *ProfileCache) evict(now time.Time) {
	var oldestId feedid.FeedID
	var oldestAt time.Time
	first := true
	for id, e := range c.entries {
		if now.Sub(e.cachedAt) >= c.ttl {
			delete(c.entries, id)
			continue
		}
		if first || e.cachedAt.Before(oldestAt) {
			oldestId, oldestAt, first = id, e.cachedAt, false
		}
	}
	if len(c.entries) >= c.max && !first {
		delete(c.entries, oldestId)
	}
}
