package selftrader

import (
	"context"
	"testing"

	"mm-core/internal/cache"
	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

// TestTickSkipsWhenFollowTickerWhollyMissing asserts a cold cache (no
// ticker published yet for the follow symbol) produces no order
// submission at all, rather than falling through to the "no trade
// available" sizing branch.
func TestTickSkipsWhenFollowTickerWhollyMissing(t *testing.T) {
	client := venue.NewMockClient()
	store := cache.NewMemoryStore()
	tr := New(baseSTConfig(), client, store, testLogger())

	tr.tick(context.Background())

	open, err := client.OpenOrders(context.Background(), tr.cfg.MakerSymbol)
	if err != nil {
		t.Fatalf("OpenOrders: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no orders submitted when the follow ticker is wholly missing, got %d", len(open))
	}
}

// TestTickSubmitsWhenFollowTickerPresent is the positive counterpart:
// once a ticker has been published, a tick should derive a price/qty and
// submit a paired order (leaving the taker leg resting after the maker
// leg is cancelled).
func TestTickSubmitsWhenFollowTickerPresent(t *testing.T) {
	client := venue.NewMockClient()
	store := cache.NewMemoryStore()
	cfg := baseSTConfig()
	tr := New(cfg, client, store, testLogger())

	bucketCache := cache.NewBucketCache(store)
	if err := bucketCache.PublishTicker(context.Background(), tickerStream(cfg.FollowSymbol), types.Ticker{Price: dec("100"), Qty: dec("1")}); err != nil {
		t.Fatalf("PublishTicker: %v", err)
	}

	tr.tick(context.Background())

	open, err := client.OpenOrders(context.Background(), cfg.MakerSymbol)
	if err != nil {
		t.Fatalf("OpenOrders: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected the taker leg left resting after a submitted tick, got %d", len(open))
	}
}
