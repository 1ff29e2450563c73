package mm

import (
	"testing"

	"github.com/shopspring/decimal"

	"mm-core/internal/config"
	"mm-core/pkg/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMirrorAskOrdersWidensAndCapsNotional(t *testing.T) {
	cfg := config.MMConfig{
		NearAskSize:        2,
		NearSellPriceMargin: 10, // 10 bps
		NearQtyMultiplier:  1,
		NearMaxAmtPerOrder: 100,
		PriceDecimals:      2,
		QtyDecimals:        4,
	}
	asks := []types.PriceLevel{
		{Price: dec("100"), Qty: dec("5")},
		{Price: dec("101"), Qty: dec("1")},
	}
	out := mirrorAskOrders(asks, cfg)
	if len(out) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(out))
	}
	if !out[0].Price.Equal(dec("100.10")) {
		t.Errorf("expected widened price 100.10, got %s", out[0].Price)
	}
	// qty capped at max notional / price: 100/100.10 ~= 0.999
	maxQty := dec("100").Div(out[0].Price).Round(4)
	if !out[0].Qty.Equal(maxQty) {
		t.Errorf("expected qty capped to %s, got %s", maxQty, out[0].Qty)
	}
}

func TestMirrorBidOrdersWidensPrice(t *testing.T) {
	cfg := config.MMConfig{
		NearBidSize:        1,
		NearBuyPriceMargin: 10,
		NearQtyMultiplier:  1,
		PriceDecimals:      2,
		QtyDecimals:        4,
	}
	bids := []types.PriceLevel{{Price: dec("100"), Qty: dec("1")}}
	out := mirrorBidOrders(bids, cfg)
	if len(out) != 1 {
		t.Fatalf("expected 1 order, got %d", len(out))
	}
	if !out[0].Price.Equal(dec("99.90")) {
		t.Errorf("expected widened price 99.90, got %s", out[0].Price)
	}
	if out[0].Side != types.BUY {
		t.Errorf("expected BUY side, got %s", out[0].Side)
	}
}

func TestMirrorSideDropsZeroQtyLevels(t *testing.T) {
	cfg := config.MMConfig{
		NearAskSize:        1,
		NearQtyMultiplier:  1,
		PriceDecimals:      2,
		QtyDecimals:        0, // integral quantities (invariant 10)
	}
	asks := []types.PriceLevel{{Price: dec("100"), Qty: dec("0.4")}}
	out := mirrorAskOrders(asks, cfg)
	if len(out) != 0 {
		t.Fatalf("expected qty rounding to 0 to drop the level, got %v", out)
	}
}

func TestRoundQtyIntegralWhenZeroDecimals(t *testing.T) {
	got := roundQty(dec("3.7"), 0)
	if !got.Equal(dec("3")) {
		t.Errorf("expected floor to 3, got %s", got)
	}
}

func TestSelfTradeGuardFiltersCrossingOrders(t *testing.T) {
	ctx := &Context{}
	asks := []ProspectiveOrder{{Side: types.SELL, Price: dec("97"), Qty: dec("1")}, {Side: types.SELL, Price: dec("101"), Qty: dec("1")}}
	bids := []ProspectiveOrder{{Side: types.BUY, Price: dec("98"), Qty: dec("1")}, {Side: types.BUY, Price: dec("96"), Qty: dec("1")}}

	filteredAsks, filteredBids, topAsk, topBid := selfTradeGuard(asks, bids, ctx)

	if !topBid.Equal(dec("98")) {
		t.Errorf("expected topBid 98, got %s", topBid)
	}
	if !topAsk.Equal(dec("97")) {
		t.Errorf("expected topAsk 97, got %s", topAsk)
	}
	if len(filteredAsks) != 1 || !filteredAsks[0].Price.Equal(dec("101")) {
		t.Errorf("expected only the 101 ask (>98) to survive the guard, got %v", filteredAsks)
	}
	if len(filteredBids) != 1 || !filteredBids[0].Price.Equal(dec("96")) {
		t.Errorf("expected only the 96 bid (<97) to survive the guard, got %v", filteredBids)
	}
}
