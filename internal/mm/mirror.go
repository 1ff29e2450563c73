package mm

import (
	"github.com/shopspring/decimal"

	"mm-core/internal/config"
	"mm-core/pkg/types"
)

// bps is one basis point as a decimal multiplier (1e-4).
var bps = decimal.New(1, -4)

// ProspectiveOrder is an order the mirror/spread pass wants to place,
// before the diff-based reuse pass decides whether to reserve a previous
// order in its place.
type ProspectiveOrder struct {
	Side  types.Side
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// mirrorSide walks up to n levels of a follow-book side and derives
// prospective near orders: price is the level price nudged by marginBps,
// qty is the level qty scaled by qtyMultiplier and capped by the
// max-notional-per-order budget. Levels that round to a zero quantity are
// dropped.
func mirrorSide(side types.Side, levels []types.PriceLevel, n int, marginBps, qtyMultiplier, maxAmtPerOrder float64, priceDecimals, qtyDecimals int, widen bool) []ProspectiveOrder {
	if n > len(levels) {
		n = len(levels)
	}
	out := make([]ProspectiveOrder, 0, n)
	margin := decimal.NewFromFloat(marginBps).Mul(bps)
	factor := decimal.NewFromInt(1)
	if widen {
		factor = factor.Add(margin)
	} else {
		factor = factor.Sub(margin)
	}

	for i := 0; i < n; i++ {
		lvl := levels[i]
		price := roundPrice(lvl.Price.Mul(factor), priceDecimals)
		if price.Sign() <= 0 {
			continue
		}

		qty := lvl.Qty.Mul(decimal.NewFromFloat(qtyMultiplier))
		if maxAmtPerOrder > 0 {
			maxQty := decimal.NewFromFloat(maxAmtPerOrder).Div(price)
			if qty.GreaterThan(maxQty) {
				qty = maxQty
			}
		}
		qty = roundQty(qty, qtyDecimals)
		if qty.Sign() <= 0 {
			continue
		}

		out = append(out, ProspectiveOrder{Side: side, Price: price, Qty: qty})
	}
	return out
}

// mirrorAskOrders generates near-side ask orders from the follow book's
// asks: widened away from the touch by near_sell_price_margin.
func mirrorAskOrders(asks []types.PriceLevel, cfg config.MMConfig) []ProspectiveOrder {
	return mirrorSide(types.SELL, asks, cfg.NearAskSize, cfg.NearSellPriceMargin, cfg.NearQtyMultiplier, cfg.NearMaxAmtPerOrder, cfg.PriceDecimals, cfg.QtyDecimals, true)
}

// mirrorBidOrders generates near-side bid orders from the follow book's
// bids: widened away from the touch by near_buy_price_margin.
func mirrorBidOrders(bids []types.PriceLevel, cfg config.MMConfig) []ProspectiveOrder {
	return mirrorSide(types.BUY, bids, cfg.NearBidSize, cfg.NearBuyPriceMargin, cfg.NearQtyMultiplier, cfg.NearMaxAmtPerOrder, cfg.PriceDecimals, cfg.QtyDecimals, false)
}

// roundPrice rounds to priceDecimals, or floors to an integer when
// priceDecimals is 0.
func roundPrice(v decimal.Decimal, priceDecimals int) decimal.Decimal {
	if priceDecimals == 0 {
		return v.Floor()
	}
	return v.Round(int32(priceDecimals))
}

// roundQty rounds to qtyDecimals; invariant 10 requires integral quantities
// when qtyDecimals == 0.
func roundQty(v decimal.Decimal, qtyDecimals int) decimal.Decimal {
	if qtyDecimals == 0 {
		return v.Floor()
	}
	return v.Round(int32(qtyDecimals))
}

// selfTradeGuard filters prospective asks/bids that would cross the
// opposing side's resting orders, carrying forward the stricter of the
// previous and newly observed touch prices. When a cancel batch fails,
// the caller re-derives guard prices from the now-stale touch, which is
// why the stricter side always wins here rather than the latest one.
func selfTradeGuard(newAsks, newBids []ProspectiveOrder, ctx *Context) (asks, bids []ProspectiveOrder, topAsk, topBid decimal.Decimal) {
	topBid = ctx.TopBid
	if len(newBids) > 0 && newBids[0].Price.GreaterThan(topBid) {
		topBid = newBids[0].Price
	}
	topAsk = ctx.TopAsk
	if len(newAsks) > 0 {
		if ctx.TopAsk.IsZero() || newAsks[0].Price.LessThan(topAsk) {
			topAsk = newAsks[0].Price
		}
	}

	for _, a := range newAsks {
		if a.Price.GreaterThan(topBid) {
			asks = append(asks, a)
		}
	}
	for _, b := range newBids {
		if topAsk.IsZero() || b.Price.LessThan(topAsk) {
			bids = append(bids, b)
		}
	}
	return asks, bids, topAsk, topBid
}
