package mm

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"mm-core/internal/config"
	"mm-core/pkg/types"
)

// spreadFar generates far-side orders by walking outward from the first
// level of a follow-book side, multiplying the price by a fixed factor at
// each step and drawing a quantity from a weighted prefix of the near
// book's quantities. rng is injected so tests can pin the quantity draw;
// production callers pass rand.New(rand.NewSource(time.Now().UnixNano())).
func spreadFar(side types.Side, levels []types.PriceLevel, n int, marginBps, qtyMultiplier, maxAmtPerOrder float64, priceDecimals, qtyDecimals int, widen bool, rng *rand.Rand) []ProspectiveOrder {
	if len(levels) == 0 || n <= 0 {
		return nil
	}

	qtys := make([]decimal.Decimal, len(levels))
	for i, l := range levels {
		qtys[i] = l.Qty
	}

	margin := decimal.NewFromFloat(marginBps).Mul(bps)
	factor := decimal.NewFromInt(1)
	if widen {
		factor = factor.Add(margin)
	} else {
		factor = factor.Sub(margin)
	}

	out := make([]ProspectiveOrder, 0, n)
	price := levels[0].Price
	for step := 1; step <= n; step++ {
		price = price.Mul(factor)
		roundedPrice := roundPrice(price, priceDecimals)
		if roundedPrice.Sign() <= 0 {
			continue
		}

		randIdx := rng.Intn(len(qtys))
		weight := decimal.NewFromFloat(0.95 + float64(randIdx)*0.05/float64(len(qtys)))
		qty := qtys[randIdx].Mul(weight).Mul(decimal.NewFromFloat(qtyMultiplier))
		if maxAmtPerOrder > 0 {
			maxQty := decimal.NewFromFloat(maxAmtPerOrder).Div(roundedPrice)
			if qty.GreaterThan(maxQty) {
				qty = maxQty
			}
		}
		qty = roundQty(qty, qtyDecimals)
		if qty.Sign() <= 0 {
			continue
		}

		out = append(out, ProspectiveOrder{Side: side, Price: roundedPrice, Qty: qty})
	}
	return out
}

// spreadFarAsks generates the far-ask ladder from the follow book's asks.
func spreadFarAsks(asks []types.PriceLevel, cfg config.MMConfig, rng *rand.Rand) []ProspectiveOrder {
	return spreadFar(types.SELL, asks, cfg.FarAskSize, cfg.FarSellPriceMargin, cfg.FarQtyMultiplier, cfg.FarMaxAmtPerOrder, cfg.PriceDecimals, cfg.QtyDecimals, true, rng)
}

// spreadFarBids generates the far-bid ladder from the follow book's bids.
func spreadFarBids(bids []types.PriceLevel, cfg config.MMConfig, rng *rand.Rand) []ProspectiveOrder {
	return spreadFar(types.BUY, bids, cfg.FarBidSize, cfg.FarBuyPriceMargin, cfg.FarQtyMultiplier, cfg.FarMaxAmtPerOrder, cfg.PriceDecimals, cfg.QtyDecimals, false, rng)
}
