package localstore

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTTL is how long a cached catalog stays fresh.
const DefaultTTL = 60 * 24 * time.Hour

type entry struct {
	Data        jsoniter.RawMessage `json:"data"`
	LastFetched int64               `json:"lastFetched"`
}

// Cache stores JSON values in a KV together with the time they were fetched.
type Cache struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

// NewCache makes a Cache over kv. A non-positive ttl means DefaultTTL.
func NewCache(kv KV, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{kv: kv, ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used for expiry.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get decodes the value under key into v. It reports false, and removes the entry, when the value is missing, expired, or unreadable.
func (c *Cache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.LastFetched == 0 {
		return false, c.kv.Remove(ctx, key)
	}
	if c.now().Sub(time.UnixMilli(e.LastFetched)) >= c.ttl {
		return false, c.kv.Remove(ctx, key)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return false, c.kv.Remove(ctx, key)
	}
	return true, nil
}

// Put stores v under key stamped with the current time.
func (c *Cache) Put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("Put: unable to encode %s: %w", key, err)
	}
	b, err := json.Marshal(entry{Data: data, LastFetched: c.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("Put: unable to encode entry %s: %w", key, err)
	}
	return c.kv.Set(ctx, key, string(b))
}

// Invalidate drops key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.kv.Remove(ctx, key)
}
