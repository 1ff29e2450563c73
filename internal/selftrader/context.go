// Package selftrader implements the self-trading loop: paired maker/taker
// orders that mirror a follow venue's last-trade price onto a maker
// symbol, staying within the venue's own top-of-book and bounded by a
// per-minute open/close continuity rule.
package selftrader

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Context is the per-symbol self-trade state carried between ticks.
type Context struct {
	mu     sync.Mutex
	Price  decimal.Decimal
	Qty    decimal.Decimal
	Minute int
}

// NewContext creates an empty self-trade context.
func NewContext() *Context {
	return &Context{}
}

// minuteOf returns the wall-clock minute bucket for t, used to detect the
// first tick of a new minute (the close(N) == open(N+1) rule).
func minuteOf(t time.Time) int {
	return int(t.Unix() / 60)
}
