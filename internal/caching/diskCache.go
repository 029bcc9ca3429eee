package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists lookups between runs as one JSON file per key.
// A DiskCache with an empty directory is disabled.
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type diskEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
}

func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	if ttl <= 0 {
		ttl = DefaultTtl
	}
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

func (d *DiskCache) Enabled() bool {
	return d != nil && d.dir != ""
}

// Get decodes the stored value into target. It reports false for a miss, an expired
// entry or an unreadable file.
func (d *DiskCache) Get(key string, target interface{}) bool {
	if !d.Enabled() {
		return false
	}

	data, err := os.ReadFile(d.path(key))
	if err != nil {
		return false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}

	if entry.Key != key || d.now().Sub(entry.Timestamp) > d.ttl {
		return false
	}

	return json.Unmarshal(entry.Value, target) == nil
}

func (d *DiskCache) Set(key string, value interface{}) error {
	if !d.Enabled() {
		return nil
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("error creating cache directory %s: %w", d.dir, err)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding cache entry %s: %w", key, err)
	}

	data, err := json.Marshal(diskEntry{Timestamp: d.now(), Key: key, Value: raw})
	if err != nil {
		return fmt.Errorf("error encoding cache entry %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(d.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("error writing cache entry %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing cache entry %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), d.path(key)); err != nil {
		return fmt.Errorf("error writing cache entry %s: %w", key, err)
	}

	return nil
}

// Clear removes the cache directory. A missing directory is not an error.
func (d *DiskCache) Clear() error {
	if !d.Enabled() {
		return nil
	}

	if err := os.RemoveAll(d.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error clearing cache %s: %w", d.dir, err)
	}
	return nil
}

func (d *DiskCache) Dir() string {
	return d.dir
}

func (d *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}
