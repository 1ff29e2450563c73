package cache

import (
	"context"
	"fmt"
	"time"

	"mm-core/pkg/types"
)

// bucketsPerMinute is the ring size: one 100ms bucket per slot, 600 slots
// covering a rolling 60s window.
const bucketsPerMinute = 600

// nowTenths returns floor(now() * 10): the current time in tenths of a
// second, the unit the bucket ring indexes by.
func nowTenths() int64 {
	return time.Now().UnixMilli() / 100
}

// bucketOf returns t mod 600, always non-negative.
func bucketOf(t int64) int64 {
	b := t % bucketsPerMinute
	if b < 0 {
		b += bucketsPerMinute
	}
	return b
}

func tsKey(stream string, b int64) string {
	return fmt.Sprintf("%s:%d", stream, b)
}

func valueKey(stream string, b int64) string {
	return tsKey(stream, b) + "_value"
}

// BucketCache layers the §3 time-bucketed freshness scheme on top of a
// plain Store: every publish writes to the bucket for the current tenth-
// of-a-second, and every read scans backwards through a full minute of
// buckets looking for the newest one still within the 60s freshness
// window. There is no TTL, no listener, no invalidation protocol — the
// ring itself is the only mechanism bounding staleness.
type BucketCache struct {
	store Store
}

// NewBucketCache wraps a Store with the bucket-ring read/write scheme.
func NewBucketCache(store Store) *BucketCache {
	return &BucketCache{store: store}
}

// publish writes payload to the bucket for "now", recording both the
// timestamp key and the value key.
func (c *BucketCache) publish(ctx context.Context, stream string, payload interface{}) error {
	t := nowTenths()
	b := bucketOf(t)
	if err := c.store.SetInt(ctx, tsKey(stream, b), t); err != nil {
		return fmt.Errorf("publish %s: set timestamp: %w", stream, err)
	}
	if err := c.store.SetDict(ctx, valueKey(stream, b), payload); err != nil {
		return fmt.Errorf("publish %s: set value: %w", stream, err)
	}
	return nil
}

// read scans backwards from the current bucket through a full ring,
// returning the first bucket whose stored timestamp t' satisfies
// t-600 < t' <= t, decoded into out. Returns found=false if no bucket in
// the ring is fresh enough.
func (c *BucketCache) read(ctx context.Context, stream string, out interface{}) (bool, error) {
	t := nowTenths()
	current := bucketOf(t)

	for i := int64(0); i < bucketsPerMinute; i++ {
		tag := bucketOf(current - i)
		tPrime, ok, err := c.store.GetInt(ctx, tsKey(stream, tag))
		if err != nil {
			return false, fmt.Errorf("read %s: get timestamp: %w", stream, err)
		}
		if !ok {
			continue
		}
		if t-bucketsPerMinute < tPrime && tPrime <= t {
			found, err := c.store.GetDict(ctx, valueKey(stream, tag), out)
			if err != nil {
				return false, fmt.Errorf("read %s: get value: %w", stream, err)
			}
			if found {
				return true, nil
			}
			// timestamp landed but payload write hasn't arrived yet; keep
			// scanning older buckets rather than treating this as a miss.
			continue
		}
	}
	return false, nil
}

// PublishOrderBook writes a depth snapshot to the current bucket for stream.
func (c *BucketCache) PublishOrderBook(ctx context.Context, stream string, snap types.OrderBookSnapshot) error {
	return c.publish(ctx, stream, snap)
}

// GetOrderBook returns the freshest order book snapshot for stream within
// the last 60s, or found=false if none exists.
func (c *BucketCache) GetOrderBook(ctx context.Context, stream string) (*types.OrderBookSnapshot, bool, error) {
	var snap types.OrderBookSnapshot
	found, err := c.read(ctx, stream, &snap)
	if err != nil || !found {
		return nil, found, err
	}
	return &snap, true, nil
}

// PublishTicker writes a last-trade ticker to the current bucket for stream.
func (c *BucketCache) PublishTicker(ctx context.Context, stream string, t types.Ticker) error {
	return c.publish(ctx, stream, t)
}

// GetTicker returns the freshest ticker for stream within the last 60s, or
// found=false if none exists.
func (c *BucketCache) GetTicker(ctx context.Context, stream string) (*types.Ticker, bool, error) {
	var t types.Ticker
	found, err := c.read(ctx, stream, &t)
	if err != nil || !found {
		return nil, found, err
	}
	return &t, true, nil
}
