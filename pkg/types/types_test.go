package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOrderBookSnapshotTopAskBid(t *testing.T) {
	empty := OrderBookSnapshot{}
	if _, ok := empty.TopAsk(); ok {
		t.Error("expected no top ask on an empty book")
	}
	if _, ok := empty.TopBid(); ok {
		t.Error("expected no top bid on an empty book")
	}

	book := OrderBookSnapshot{
		Asks: []PriceLevel{{Price: dec("101"), Qty: dec("1")}, {Price: dec("102"), Qty: dec("2")}},
		Bids: []PriceLevel{{Price: dec("99"), Qty: dec("1")}, {Price: dec("98"), Qty: dec("2")}},
	}
	ask, ok := book.TopAsk()
	if !ok || !ask.Price.Equal(dec("101")) {
		t.Errorf("expected top ask 101, got %v ok=%v", ask, ok)
	}
	bid, ok := book.TopBid()
	if !ok || !bid.Price.Equal(dec("99")) {
		t.Errorf("expected top bid 99, got %v ok=%v", bid, ok)
	}
}

func TestRiskPositionPrice(t *testing.T) {
	p := RiskPosition{Qty: dec("2"), TotalAmt: dec("200")}
	if !p.Price().Equal(dec("100")) {
		t.Errorf("expected avg price 100, got %s", p.Price())
	}

	zero := RiskPosition{}
	if !zero.Price().IsZero() {
		t.Errorf("expected zero price for zero qty, got %s", zero.Price())
	}
}

func TestRiskPositionIsFullyHedged(t *testing.T) {
	p := RiskPosition{Qty: dec("5"), HedgedQty: dec("3")}
	if p.IsFullyHedged() {
		t.Error("expected not fully hedged at 3/5")
	}
	p.HedgedQty = dec("5")
	if !p.IsFullyHedged() {
		t.Error("expected fully hedged at 5/5")
	}
	p.HedgedQty = dec("6")
	if !p.IsFullyHedged() {
		t.Error("expected fully hedged when hedged qty overshoots qty")
	}
}
