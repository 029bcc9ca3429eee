package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultTtl = time.Hour

type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
}

// Cache is an in-memory lookup cache. Concurrent GetOrCreate calls for the same key
// share one call to createFn; failed creations are not stored.
type Cache struct {
	data      sync.Map
	group     singleflight.Group
	itemCount int32
	ttl       time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTtl
	}
	return &Cache{ttl: ttl}
}

func (c *Cache) GetOrCreate(key string, createFn func(entry *CacheEntry) (interface{}, error)) (interface{}, error) {
	if value, ok := c.data.Load(key); ok {
		cacheEntry := value.(CacheEntry)
		if cacheEntry.Expiration.After(time.Now()) {
			return cacheEntry.Value, nil
		} else {
			c.CleanUp()
		}
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		if value, ok := c.data.Load(key); ok {
			cacheEntry := value.(CacheEntry)
			if cacheEntry.Expiration.After(time.Now()) {
				return cacheEntry.Value, nil
			}
		}

		entry := &CacheEntry{
			Expiration: time.Now().Add(c.entryTtl()),
		}

		v, err := createFn(entry)
		if err != nil {
			return nil, err
		}

		entry.Value = v
		if _, loaded := c.data.Swap(key, *entry); !loaded {
			atomic.AddInt32(&c.itemCount, 1)
		}
		return v, nil
	})

	return value, err
}

func (c *Cache) entryTtl() time.Duration {
	if c.ttl <= 0 {
		return DefaultTtl
	}
	return c.ttl
}

func (c *Cache) Len() int {
	return int(atomic.LoadInt32(&c.itemCount))
}

func (c *Cache) CleanUp() {
	if atomic.LoadInt32(&c.itemCount) == 0 {
		return
	}

	c.data.Range(func(key, value interface{}) bool {
		entry := value.(CacheEntry)
		if entry.Expiration.Before(time.Now()) {
			c.data.Delete(key)
			atomic.AddInt32(&c.itemCount, -1)
		}
		return true
	})
}
