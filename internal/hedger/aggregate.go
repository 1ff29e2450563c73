package hedger

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"mm-core/pkg/types"
)

// SymbolAggregate is the net unhedged exposure across every maker order
// contributing to one symbol, signed BUY-positive / SELL-negative.
type SymbolAggregate struct {
	Symbol   string
	Qty      decimal.Decimal
	Amt      decimal.Decimal
	OrderIDs []string
}

// HedgeTask is a fully-decided hedge ready for submission: which symbol,
// which side, at what price and quantity, and which maker order ids it
// discharges.
type HedgeTask struct {
	Symbol   string
	Side     types.Side
	Price    decimal.Decimal
	Qty      decimal.Decimal
	OrderIDs []string
}

// aggregateUnhedged groups every tracked risk position by symbol into a
// signed net exposure, removing (and skipping) any position whose
// hedged_qty has already caught up to qty.
func (b *RiskBook) aggregateUnhedged() map[string]*SymbolAggregate {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]*SymbolAggregate)
	for id, p := range b.positions {
		if p.HedgedQty.GreaterThanOrEqual(p.Qty) {
			delete(b.positions, id)
			continue
		}
		hedgeQty := p.Qty.Sub(p.HedgedQty)
		hedgeAmt := p.TotalAmt.Sub(p.HedgedAmt)

		a, ok := out[p.Symbol]
		if !ok {
			a = &SymbolAggregate{Symbol: p.Symbol}
			out[p.Symbol] = a
		}
		if p.Side == types.BUY {
			a.Qty = a.Qty.Add(hedgeQty)
			a.Amt = a.Amt.Add(hedgeAmt)
		} else {
			a.Qty = a.Qty.Sub(hedgeQty)
			a.Amt = a.Amt.Sub(hedgeAmt)
		}
		a.OrderIDs = append(a.OrderIDs, id)
	}
	return out
}

// BuildHedgeTasks runs one risk-position handling tick: it aggregates
// unhedged exposure per symbol, drops aggregates below the per-order
// minimums, marks contributing order ids as fully hedged *before*
// returning the task (so a subsequent fill opens a fresh tranche rather
// than double-hedging the same exposure), and derives the hedge side and
// price for the rest.
func BuildHedgeTasks(book *RiskBook, minQtyPerOrder, minAmtPerOrder float64, logger *slog.Logger) []HedgeTask {
	minQty := decimal.NewFromFloat(minQtyPerOrder)
	minAmt := decimal.NewFromFloat(minAmtPerOrder)

	aggregates := book.aggregateUnhedged()
	tasks := make([]HedgeTask, 0, len(aggregates))
	for _, agg := range aggregates {
		if decimalAbs(agg.Amt).LessThan(minAmt) || decimalAbs(agg.Qty).LessThan(minQty) {
			continue
		}
		if agg.Qty.IsZero() {
			logger.Debug("aggregate is self-hedging, skipping", "symbol", agg.Symbol)
			continue
		}

		book.MarkHedged(agg.OrderIDs)

		side := types.SELL
		if agg.Qty.Sign() < 0 {
			side = types.BUY
		}
		price := decimalAbs(agg.Amt).Div(decimalAbs(agg.Qty))

		tasks = append(tasks, HedgeTask{
			Symbol:   agg.Symbol,
			Side:     side,
			Price:    price,
			Qty:      decimalAbs(agg.Qty),
			OrderIDs: agg.OrderIDs,
		})
	}
	return tasks
}
