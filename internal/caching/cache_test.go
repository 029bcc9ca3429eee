package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDeduplicatesConcurrentCalls(t *testing.T) {
	c := NewCache(time.Minute)
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCreate("requests|osv", func(entry *CacheEntry) (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "advisories", nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "advisories", v)
	}
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCreateDoesNotStoreFailures(t *testing.T) {
	c := NewCache(time.Minute)

	_, err := c.GetOrCreate("numpy|osv", func(entry *CacheEntry) (interface{}, error) {
		return nil, errors.New("unreachable")
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCreate("numpy|osv", func(entry *CacheEntry) (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCleanUpRemovesExpiredEntries(t *testing.T) {
	c := NewCache(time.Minute)
	c.data.Store("stale", CacheEntry{Value: 1, Expiration: time.Now().Add(-time.Second)})
	c.itemCount = 1

	c.CleanUp()

	assert.Equal(t, 0, c.Len())
}

func TestDiskCacheRoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	d := NewDiskCache(dir, time.Hour)

	require.NoError(t, d.Set("osv|requests", []string{"GHSA-1"}))

	var got []string
	require.True(t, d.Get("osv|requests", &got))
	assert.Equal(t, []string{"GHSA-1"}, got)

	d.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, d.Get("osv|requests", &got))
}

func TestDiskCacheClear(t *testing.T) {
	dir := t.TempDir() + "/cache"
	d := NewDiskCache(dir, time.Hour)
	require.NoError(t, d.Set("k", 1))

	require.NoError(t, d.Clear())

	var v int
	assert.False(t, d.Get("k", &v))
	require.NoError(t, d.Clear())
}

func TestDisabledDiskCache(t *testing.T) {
	d := NewDiskCache("", time.Hour)
	require.NoError(t, d.Set("k", 1))
	var v int
	assert.False(t, d.Get("k", &v))
}
