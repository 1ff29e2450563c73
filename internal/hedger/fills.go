// Package hedger consumes maker-fill events from a private WS feed,
// aggregates unhedged exposure per symbol, and submits offsetting orders
// to a hedge venue through a bounded worker pool.
package hedger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mm-core/pkg/types"
)

// tradeIDTTL is how long a seen trade id is remembered before it is
// eligible for purge (invariant 4: entries older than 7200s are absent
// after any housekeeping pass).
const tradeIDTTL = 7200 * time.Second

// FillProcessor deduplicates inbound fill events by trade id and
// maintains the risk-position book those fills accumulate into.
type FillProcessor struct {
	mu       sync.Mutex
	tradeIDs map[string]time.Time // trade_id -> first-seen time
	book     *RiskBook
}

// NewFillProcessor creates a fill processor backed by an empty risk book.
func NewFillProcessor() *FillProcessor {
	return &FillProcessor{
		tradeIDs: make(map[string]time.Time),
		book:     NewRiskBook(),
	}
}

// Book returns the underlying risk-position book.
func (p *FillProcessor) Book() *RiskBook {
	return p.book
}

// HandleFill processes one inbound maker fill: dedups by trade id,
// validates qty/amount, and upserts the fill into the risk book.
// Returns false if the fill was dropped (empty/duplicate trade id, or
// non-positive qty/amount).
func (p *FillProcessor) HandleFill(fill types.FilledOrder) bool {
	if fill.TradeID == "" {
		return false
	}

	p.mu.Lock()
	if _, seen := p.tradeIDs[fill.TradeID]; seen {
		p.mu.Unlock()
		return false
	}
	p.tradeIDs[fill.TradeID] = time.Now()
	p.mu.Unlock()

	if fill.Qty.Sign() <= 0 || fill.Amount.Sign() <= 0 {
		return false
	}

	p.book.Upsert(fill)
	return true
}

// PurgeStaleTradeIDs removes trade ids older than tradeIDTTL. Returns the
// number removed.
func (p *FillProcessor) PurgeStaleTradeIDs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := time.Now().Add(-tradeIDTTL)
	removed := 0
	for id, seen := range p.tradeIDs {
		if seen.Before(cutoff) {
			delete(p.tradeIDs, id)
			removed++
		}
	}
	return removed
}

// TradeIDCount reports how many trade ids are currently tracked (used by
// housekeeping logging).
func (p *FillProcessor) TradeIDCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tradeIDs)
}

// RiskBook tracks unhedged exposure per maker order id.
type RiskBook struct {
	mu         sync.Mutex
	positions  map[string]*types.RiskPosition
}

// NewRiskBook creates an empty risk-position book.
func NewRiskBook() *RiskBook {
	return &RiskBook{positions: make(map[string]*types.RiskPosition)}
}

// Upsert accumulates a fill into the position for its order id, creating
// the position on the first fill. The side is fixed from the first fill.
func (b *RiskBook) Upsert(fill types.FilledOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[fill.OrderID]
	if !ok {
		b.positions[fill.OrderID] = &types.RiskPosition{
			Symbol:    fill.Symbol,
			Side:      fill.Side,
			Qty:       fill.Qty,
			TotalAmt:  fill.Amount,
			CreatedTS: fill.MatchTime,
			Order:     fill.OrderID,
		}
		return
	}
	pos.Qty = pos.Qty.Add(fill.Qty)
	pos.TotalAmt = pos.TotalAmt.Add(fill.Amount)
}

// Positions returns a snapshot copy of all tracked positions.
func (b *RiskBook) Positions() []types.RiskPosition {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.RiskPosition, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	return out
}

// Count reports the number of tracked risk positions.
func (b *RiskBook) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions)
}

// MarkHedged sets hedged_qty/hedged_amt to the position's current
// qty/total_amt for every listed order id — done before a hedge is
// submitted so a subsequent fill on the same maker order starts a fresh
// tranche rather than double-counting the already-hedged quantity.
func (b *RiskBook) MarkHedged(orderIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range orderIDs {
		if p, ok := b.positions[id]; ok {
			p.HedgedQty = p.Qty
			p.HedgedAmt = p.TotalAmt
		}
	}
}

// RemoveFullyHedged deletes every position whose hedged_qty has caught up
// to qty (invariant 3).
func (b *RiskBook) RemoveFullyHedged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, p := range b.positions {
		if p.IsFullyHedged() {
			delete(b.positions, id)
		}
	}
}

// decimalAbs is a small convenience used by the aggregation pass.
func decimalAbs(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return d.Neg()
	}
	return d
}
