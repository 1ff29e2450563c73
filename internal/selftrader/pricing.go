package selftrader

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"mm-core/internal/config"
	"mm-core/pkg/types"
)

// TickInput bundles the external reads a self-trade tick needs: the
// follow-venue last-trade ticker and the maker venue's top of book.
type TickInput struct {
	TradePrice decimal.Decimal
	TradeQty   decimal.Decimal
	TopAsk     decimal.Decimal
	TopAskQty  decimal.Decimal
	TopBid     decimal.Decimal
	TopBidQty  decimal.Decimal
}

// TickResult is the derived price/qty for one self-trade tick, ready for
// order construction.
type TickResult struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// randCoef returns 0.9995 + 0.00001 * randrange(0,100), the jitter factor
// applied to every derived quantity.
func randCoef(rng *rand.Rand) decimal.Decimal {
	return decimal.NewFromFloat(0.9995).Add(decimal.NewFromFloat(0.00001).Mul(decimal.NewFromInt(int64(rng.Intn(100)))))
}

// computeTick runs steps 3-8 of the self-trader pass: derive a candidate
// price/qty from the follow-venue trade and the context's memory of the
// previous tick, apply the minute-boundary continuity rule, then clamp
// into the maker venue's own top of book.
func computeTick(in TickInput, cfg config.STConfig, ctx *Context, rng *rand.Rand, now time.Time) (TickResult, bool) {
	coef := randCoef(rng)
	qty := in.TradeQty.Mul(decimal.NewFromFloat(cfg.QtyMultiplier)).Mul(coef)

	tick := decimal.New(1, int32(-cfg.PriceDecimals))
	divergence := decimal.NewFromFloat(cfg.PriceDivergence)

	var price decimal.Decimal
	switch {
	case in.TradePrice.IsZero() && in.TradeQty.IsZero():
		// No trade available from the follow venue: hold the previous
		// close and size off the maker book's own top-of-book depth.
		price = ctx.Price
		qty = decimal.NewFromFloat(0.5).Mul(in.TopAskQty.Add(in.TopBidQty)).Mul(coef)
	case !ctx.Price.IsZero() && in.TradePrice.Equal(ctx.Price):
		if in.TradePrice.Equal(in.TopAsk) {
			price = in.TradePrice.Sub(tick)
		} else {
			price = in.TradePrice.Add(tick)
		}
	case !ctx.Price.IsZero() && divergenceRatio(in.TradePrice, ctx.Price).GreaterThan(divergence):
		if in.TradePrice.GreaterThan(ctx.Price) {
			price = ctx.Price.Mul(decimal.NewFromInt(1).Add(divergence))
		} else {
			price = ctx.Price.Mul(decimal.NewFromInt(1).Sub(divergence))
		}
	default:
		price = in.TradePrice
	}

	if price.Sign() <= 0 {
		return TickResult{}, false
	}

	minQty := decimal.New(1, int32(-cfg.QtyDecimals))
	maxQty := decimal.NewFromFloat(cfg.MaxAmtPerOrder).Div(price)
	qty = clampDecimal(qty, minQty, maxQty).Round(int32(cfg.QtyDecimals))

	isNewMinute := ctx.Minute != 0 && minuteOf(now) != ctx.Minute
	emitPrice := price
	if isNewMinute && !ctx.Price.IsZero() {
		emitPrice = ctx.Price // close(N) == open(N+1)
	}

	// Clamp into the maker venue's own top of book; break an exact tie
	// against the previous tick's qty by nudging up 1.0001x.
	emitPrice = clampDecimal(emitPrice, in.TopBid, in.TopAsk)
	if qty.Equal(ctx.Qty) {
		qty = qty.Mul(decimal.NewFromFloat(1.0001))
	}

	ctx.Price = clampDecimal(price, in.TopBid, in.TopAsk)
	ctx.Qty = qty
	ctx.Minute = minuteOf(now)

	return TickResult{Price: emitPrice, Qty: qty}, true
}

// divergenceRatio returns |a/b - 1|.
func divergenceRatio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b).Sub(decimal.NewFromInt(1)).Abs()
}

func clampDecimal(v, lo, hi decimal.Decimal) decimal.Decimal {
	if !lo.IsZero() && v.LessThan(lo) {
		v = lo
	}
	if !hi.IsZero() && v.GreaterThan(hi) {
		v = hi
	}
	return v
}

// legOrders builds the paired maker(GTX)/taker(IOC) order batch for one
// tick, applying futures leverage/contract-size scaling and position-side
// tagging when term_type is FUTURE.
func legOrders(cfg config.STConfig, side types.Side, result TickResult, nowMs int64) (maker, taker types.NewOrder) {
	opposite := types.BUY
	if side == types.BUY {
		opposite = types.SELL
	}

	qty := result.Qty
	bizType := types.SPOT
	var makerPos, takerPos types.PositionSide
	if cfg.TermType == config.TermFuture {
		bizType = types.FUTURE
		leverage := cfg.Leverage
		if leverage == 0 {
			leverage = 2
		}
		contractSize := cfg.ContractSize
		if contractSize == 0 {
			contractSize = 0.1
		}
		qty = qty.Mul(decimal.NewFromFloat(leverage)).Div(decimal.NewFromFloat(contractSize)).Floor()
		makerPos = positionSideFor(side)
		takerPos = positionSideFor(opposite)
	}

	maker = types.NewOrder{
		Symbol:       cfg.MakerSymbol,
		ClientID:     clientID("M", cfg.MakerSymbol, nowMs),
		Side:         side,
		Type:         types.OrderTypeLimit,
		Quantity:     qty,
		Price:        result.Price,
		BizType:      bizType,
		TIF:          types.GTX,
		PositionSide: makerPos,
	}
	taker = types.NewOrder{
		Symbol:       cfg.MakerSymbol,
		ClientID:     clientID("T", cfg.MakerSymbol, nowMs),
		Side:         opposite,
		Type:         types.OrderTypeLimit,
		Quantity:     qty,
		Price:        result.Price,
		BizType:      bizType,
		TIF:          types.IOC,
		PositionSide: takerPos,
	}
	return maker, taker
}

func positionSideFor(side types.Side) types.PositionSide {
	if side == types.BUY {
		return types.PositionLong
	}
	return types.PositionShort
}

func clientID(prefix, symbol string, nowMs int64) string {
	return prefix + symbol + "_" + strconv.FormatInt(nowMs, 10)
}
