// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the system — orders, order book
// snapshots, tickers, and the bookkeeping records the hedger and market maker
// pass between each other. It has no dependency on internal packages, so it
// can be imported by any layer.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Side represents the direction of an order: BUY or SELL.
type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// BizType identifies which market an order trades on.
type BizType string

const (
	SPOT     BizType = "SPOT"
	FUTURE   BizType = "FUTURE"
	UMFUTURE BizType = "UMFUTURE"
)

// TimeInForce enumerates the supported order lifecycles.
type TimeInForce string

const (
	GTC TimeInForce = "GTC" // good-til-cancelled
	GTX TimeInForce = "GTX" // post-only, rejected if it would cross
	IOC TimeInForce = "IOC" // immediate-or-cancel
)

// PositionSide distinguishes long/short legs on futures venues.
type PositionSide string

const (
	PositionNone  PositionSide = ""
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// OrderType enumerates the order types the venue client accepts.
type OrderType string

const (
	OrderTypeLimit OrderType = "LIMIT"
)

// ————————————————————————————————————————————————————————————————————————
// Order book / ticker
// ————————————————————————————————————————————————————————————————————————

// PriceLevel is a single price/qty pair. Values are decimal, not float64,
// to preserve venue-native precision through sorting and republishing.
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Qty   decimal.Decimal `json:"qty"`
}

// OrderBookSnapshot is the per-stream, per-bucket snapshot stored in the
// quote cache. Asks are sorted ascending by price, bids descending.
type OrderBookSnapshot struct {
	Asks []PriceLevel `json:"asks"`
	Bids []PriceLevel `json:"bids"`
}

// TopAsk returns the best (lowest) ask, or false if the book has no asks.
func (s OrderBookSnapshot) TopAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// TopBid returns the best (highest) bid, or false if the book has no bids.
func (s OrderBookSnapshot) TopBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// Ticker is a venue-native-precision last-trade record.
type Ticker struct {
	Price decimal.Decimal `json:"price"`
	Qty   decimal.Decimal `json:"qty"`
}

// TopAskBid is the REST top-of-book response shape from the venue client.
type TopAskBid struct {
	AskPrice decimal.Decimal `json:"ap"`
	AskQty   decimal.Decimal `json:"aq"`
	BidPrice decimal.Decimal `json:"bp"`
	BidQty   decimal.Decimal `json:"bq"`
}

// ————————————————————————————————————————————————————————————————————————
// Orders
// ————————————————————————————————————————————————————————————————————————

// NewOrder is the venue-agnostic order the market maker, hedger, and
// self-trader submit through the venue Client.
type NewOrder struct {
	Symbol           string          `json:"symbol"`
	ClientID         string          `json:"client_id"`
	Side             Side            `json:"side"`
	Type             OrderType       `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	BizType          BizType         `json:"biz_type"`
	TIF              TimeInForce     `json:"tif"`
	ReduceOnly       bool            `json:"reduce_only,omitempty"`
	PositionSide     PositionSide    `json:"position_side,omitempty"`
	Bait             bool            `json:"bait,omitempty"`
	SelfTradeEnabled bool            `json:"selftrade_enabled,omitempty"`
}

// OrderID is the venue's response to a single order in a batch submission.
// An empty ID means that order failed.
type OrderID struct {
	OrderID string `json:"order_id"`
}

// OpenOrder is a live resting order as reported by the venue's open-orders
// listing.
type OpenOrder struct {
	OrderID  string `json:"order_id"`
	ClientID string `json:"client_id"`
	Symbol   string `json:"symbol"`
	Side     Side   `json:"side"`
}

// OrderStatus is the venue's response to an order-status lookup.
type OrderStatus struct {
	Status      string          `json:"status"`
	ExecutedQty decimal.Decimal `json:"executedQty"`
	Side        Side            `json:"side"`
}

// ————————————————————————————————————————————————————————————————————————
// Market-making ladder
// ————————————————————————————————————————————————————————————————————————

// CachedOrder is one entry in a market-making context's remembered ladder:
// an order this process believes is currently live on the venue.
type CachedOrder struct {
	Price decimal.Decimal
	ID    string
}

// ————————————————————————————————————————————————————————————————————————
// Hedger bookkeeping
// ————————————————————————————————————————————————————————————————————————

// FilledOrder is a projection of an inbound maker-fill WS event.
type FilledOrder struct {
	TradeID   string
	Qty       decimal.Decimal
	Amount    decimal.Decimal
	Symbol    string
	Side      Side
	OrderID   string
	MatchTime time.Time
}

// RiskPosition accumulates unhedged exposure for a single maker order id.
// Lifecycle: created on the first fill, accumulated on subsequent partial
// fills, removed once HedgedQty catches up to Qty.
type RiskPosition struct {
	Symbol    string
	Side      Side
	Qty       decimal.Decimal
	TotalAmt  decimal.Decimal
	HedgedQty decimal.Decimal
	HedgedAmt decimal.Decimal
	CreatedTS time.Time
	Order     string // originating maker order id
}

// Price returns TotalAmt / Qty, or zero if Qty is zero.
func (p RiskPosition) Price() decimal.Decimal {
	if p.Qty.IsZero() {
		return decimal.Zero
	}
	return p.TotalAmt.Div(p.Qty)
}

// IsFullyHedged reports whether HedgedQty has caught up to Qty.
func (p RiskPosition) IsFullyHedged() bool {
	return p.HedgedQty.GreaterThanOrEqual(p.Qty)
}
