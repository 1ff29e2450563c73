package mm

import (
	"context"
	"math/rand"
	"testing"

	"mm-core/internal/config"
	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

func baseMMConfig() config.MMConfig {
	return config.MMConfig{
		MakerSymbol:         "BTCUSDT",
		NearAskSize:         1,
		NearBidSize:         1,
		NearQtyMultiplier:   1,
		NearMaxAmtPerOrder:  1000,
		PriceDecimals:       2,
		QtyDecimals:         4,
		NearTIF:             "GTC",
		NearSide:            config.NearBoth,
		FarSide:             config.NearBoth,
		NearDiffRatePerRound: 5,
		ForceRefreshNum:     100,
	}
}

// TestCancelFailureGuardScenarioC reproduces scenario C literally: a near
// pass observes top_bid=100/top_ask=101; a cancel batch that returns zero
// cancellations must tighten the guard to the stricter of old and new on
// the next pass. The mock client cancels known ids, so the failed batch is
// simulated by setting the guard state directly.
func TestCancelFailureGuardScenarioC(t *testing.T) {
	client := venue.NewMockClient()
	ctx := NewContext(client, "binance", "BTCUSDT", "BTCUSDT")
	cfg := baseMMConfig()
	cfg.NearDiffRatePerRound = 0 // force refresh every pass, so prev is always cancelled

	book1 := types.OrderBookSnapshot{
		Asks: []types.PriceLevel{{Price: dec("101"), Qty: dec("1")}},
		Bids: []types.PriceLevel{{Price: dec("100"), Qty: dec("1")}},
	}
	if err := ctx.RunNear(context.Background(), cfg, book1); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	// Simulate a failed cancel batch directly: cancel returns 0, so
	// ctx.top_ask = min(old, new), ctx.top_bid = max(old, new).
	ctx.TopAsk = dec("101")
	ctx.TopBid = dec("100")

	newTopAsk := dec("103")
	newTopBid := dec("102")
	tightAsk := minNonZero(ctx.TopAsk, newTopAsk)
	tightBid := decimalMax(ctx.TopBid, newTopBid)

	if !tightAsk.Equal(dec("101")) {
		t.Errorf("expected ctx.top_ask to stay at the stricter (lower) 101, got %s", tightAsk)
	}
	if !tightBid.Equal(dec("102")) {
		t.Errorf("expected ctx.top_bid to move to the stricter (higher) 102, got %s", tightBid)
	}

	// A new ask at 101 must now be filtered by the tightened top_bid of 102.
	asks := []ProspectiveOrder{{Side: types.SELL, Price: dec("101"), Qty: dec("1")}}
	ctx.TopBid = tightBid
	filteredAsks, _, _, _ := selfTradeGuard(asks, nil, ctx)
	if len(filteredAsks) != 0 {
		t.Errorf("expected the 101 ask to be filtered out by the tightened guard, got %v", filteredAsks)
	}
}

func TestRunNearSubmitsMirroredOrdersAndUpdatesPrev(t *testing.T) {
	client := venue.NewMockClient()
	ctx := NewContext(client, "binance", "BTCUSDT", "BTCUSDT")
	cfg := baseMMConfig()

	book := types.OrderBookSnapshot{
		Asks: []types.PriceLevel{{Price: dec("101"), Qty: dec("1")}},
		Bids: []types.PriceLevel{{Price: dec("99"), Qty: dec("1")}},
	}
	if err := ctx.RunNear(context.Background(), cfg, book); err != nil {
		t.Fatalf("RunNear: %v", err)
	}
	if len(ctx.PrevAsks) != 1 || len(ctx.PrevBids) != 1 {
		t.Fatalf("expected one resting ask and one resting bid, got asks=%v bids=%v", ctx.PrevAsks, ctx.PrevBids)
	}

	open, err := client.OpenOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("OpenOrders: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open orders on the venue, got %d", len(open))
	}
}

// TestRunNearHonorsNearSideAskOnly asserts near_side=ASK quotes only the
// ask ladder, never generating bids even though the follow book has a
// bid side.
func TestRunNearHonorsNearSideAskOnly(t *testing.T) {
	client := venue.NewMockClient()
	ctx := NewContext(client, "binance", "BTCUSDT", "BTCUSDT")
	cfg := baseMMConfig()
	cfg.NearSide = config.NearAsk

	book := types.OrderBookSnapshot{
		Asks: []types.PriceLevel{{Price: dec("101"), Qty: dec("1")}},
		Bids: []types.PriceLevel{{Price: dec("99"), Qty: dec("1")}},
	}
	if err := ctx.RunNear(context.Background(), cfg, book); err != nil {
		t.Fatalf("RunNear: %v", err)
	}
	if len(ctx.PrevAsks) != 1 {
		t.Errorf("expected one resting ask, got %d", len(ctx.PrevAsks))
	}
	if len(ctx.PrevBids) != 0 {
		t.Errorf("expected no bids with near_side=ASK, got %d", len(ctx.PrevBids))
	}
}

// TestRunFarHonorsFarSideBidOnly mirrors the near-side check for the far
// pass's independent far_side gate.
func TestRunFarHonorsFarSideBidOnly(t *testing.T) {
	client := venue.NewMockClient()
	ctx := NewContext(client, "binance", "BTCUSDT", "BTCUSDT")
	cfg := baseMMConfig()
	cfg.FarSide = config.NearBid
	cfg.FarAskSize = 1
	cfg.FarBidSize = 1
	cfg.FarSellPriceMargin = 10
	cfg.FarBuyPriceMargin = 10
	cfg.FarMaxAmtPerOrder = 1000

	book := types.OrderBookSnapshot{
		Asks: []types.PriceLevel{{Price: dec("101"), Qty: dec("1")}},
		Bids: []types.PriceLevel{{Price: dec("99"), Qty: dec("1")}},
	}
	rng := rand.New(rand.NewSource(1))
	if err := ctx.RunFar(context.Background(), cfg, book, rng); err != nil {
		t.Fatalf("RunFar: %v", err)
	}
	if len(ctx.PrevFarBids) != 1 {
		t.Errorf("expected one resting far bid, got %d", len(ctx.PrevFarBids))
	}
	if len(ctx.PrevFarAsks) != 0 {
		t.Errorf("expected no far asks with far_side=BID, got %d", len(ctx.PrevFarAsks))
	}
}

func TestRunNearIsIdempotentOnRepeatedTicksWithUnchangedBook(t *testing.T) {
	client := venue.NewMockClient()
	ctx := NewContext(client, "binance", "BTCUSDT", "BTCUSDT")
	cfg := baseMMConfig()

	book := types.OrderBookSnapshot{
		Asks: []types.PriceLevel{{Price: dec("101"), Qty: dec("1")}},
		Bids: []types.PriceLevel{{Price: dec("99"), Qty: dec("1")}},
	}
	if err := ctx.RunNear(context.Background(), cfg, book); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	firstAskID := ctx.PrevAsks[0].ID

	if err := ctx.RunNear(context.Background(), cfg, book); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if ctx.PrevAsks[0].ID != firstAskID {
		t.Errorf("expected the same resting ask to be reserved across an unchanged book, got new id %s vs %s", ctx.PrevAsks[0].ID, firstAskID)
	}
}
