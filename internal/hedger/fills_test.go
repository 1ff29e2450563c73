package hedger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mm-core/pkg/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestHandleFillDropsEmptyTradeID(t *testing.T) {
	p := NewFillProcessor()
	ok := p.HandleFill(types.FilledOrder{TradeID: "", Qty: dec("1"), Amount: dec("1")})
	if ok {
		t.Error("expected empty trade id to be dropped")
	}
	if p.Book().Count() != 0 {
		t.Error("expected no risk position created")
	}
}

func TestHandleFillDedupsTradeID(t *testing.T) {
	p := NewFillProcessor()
	fill := types.FilledOrder{TradeID: "t1", Qty: dec("1"), Amount: dec("100"), OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY}

	if !p.HandleFill(fill) {
		t.Fatal("expected first fill to be accepted")
	}
	if p.HandleFill(fill) {
		t.Error("expected duplicate trade id to be dropped")
	}
	if p.Book().Count() != 1 {
		t.Errorf("expected exactly one risk position, got %d", p.Book().Count())
	}
}

func TestHandleFillRejectsNonPositiveQtyOrAmount(t *testing.T) {
	p := NewFillProcessor()
	if p.HandleFill(types.FilledOrder{TradeID: "t1", Qty: dec("0"), Amount: dec("1")}) {
		t.Error("expected zero qty to be rejected")
	}
	if p.HandleFill(types.FilledOrder{TradeID: "t2", Qty: dec("1"), Amount: dec("0")}) {
		t.Error("expected zero amount to be rejected")
	}
}

func TestUpsertAccumulatesSubsequentFillsOnSameOrder(t *testing.T) {
	p := NewFillProcessor()
	p.HandleFill(types.FilledOrder{TradeID: "t1", Qty: dec("1"), Amount: dec("100"), OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY})
	p.HandleFill(types.FilledOrder{TradeID: "t2", Qty: dec("2"), Amount: dec("200"), OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY})

	positions := p.Book().Positions()
	if len(positions) != 1 {
		t.Fatalf("expected one aggregated position, got %d", len(positions))
	}
	if !positions[0].Qty.Equal(dec("3")) || !positions[0].TotalAmt.Equal(dec("300")) {
		t.Errorf("expected qty=3 amt=300, got qty=%s amt=%s", positions[0].Qty, positions[0].TotalAmt)
	}
}

// TestPurgeStaleTradeIDs covers invariant 4: entries older than 7200s are
// absent after any housekeeping pass.
func TestPurgeStaleTradeIDs(t *testing.T) {
	p := NewFillProcessor()
	p.tradeIDs["stale"] = time.Now().Add(-2 * tradeIDTTL)
	p.tradeIDs["fresh"] = time.Now()

	removed := p.PurgeStaleTradeIDs()
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := p.tradeIDs["stale"]; ok {
		t.Error("expected stale trade id to be purged")
	}
	if _, ok := p.tradeIDs["fresh"]; !ok {
		t.Error("expected fresh trade id to remain")
	}
}

// TestRemoveFullyHedged covers invariant 3: hedged_qty <= qty always, and
// once >=, the entry is removed.
func TestRemoveFullyHedged(t *testing.T) {
	b := NewRiskBook()
	b.Upsert(types.FilledOrder{TradeID: "t1", OrderID: "o1", Symbol: "BTCUSDT", Side: types.BUY, Qty: dec("1"), Amount: dec("100")})
	b.MarkHedged([]string{"o1"})
	b.RemoveFullyHedged()
	if b.Count() != 0 {
		t.Errorf("expected fully-hedged position removed, count=%d", b.Count())
	}
}
