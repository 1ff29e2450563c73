// Package mm implements the market-making engine: per-symbol ladder
// generation mirroring a followed order book onto a maker venue, with
// near/far layers, price-diff-based order reuse, a self-trade guard, and
// cancel/replace orchestration.
package mm

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

// BatchSize is the maximum number of orders submitted or cancelled in a
// single venue-client call.
const BatchSize = 10

// Context is the per-symbol market-making state. The sequences below are
// exclusively owned by this context: after each pass, their union is
// exactly the set of order ids this process believes to be live on the
// venue (invariant 2).
type Context struct {
	mu sync.Mutex

	Client         venue.Client
	FollowExchange string
	FollowSymbol   string
	MakerSymbol    string

	PrevAsks    []types.CachedOrder
	PrevBids    []types.CachedOrder
	PrevFarAsks []types.CachedOrder
	PrevFarBids []types.CachedOrder

	NoForceRefreshNum int

	TopAsk decimal.Decimal
	TopBid decimal.Decimal
}

// NewContext creates an MM context for one symbol pair.
func NewContext(client venue.Client, followExchange, followSymbol, makerSymbol string) *Context {
	return &Context{
		Client:         client,
		FollowExchange: NormalizeFollowExchange(followExchange),
		FollowSymbol:   followSymbol,
		MakerSymbol:    makerSymbol,
	}
}

// NormalizeFollowExchange collapses the UM-futures and portfolio-margin
// venue aliases onto a single logical "binance_future" stream name.
func NormalizeFollowExchange(exchange string) string {
	switch exchange {
	case "binance_UMFuture", "binance_portfolio_margin":
		return "binance_future"
	default:
		return exchange
	}
}

// FollowStream returns the cache key the follow-exchange publishes
// snapshots under for this context's symbol, matching the ingesters'
// stream-naming conventions (see internal/ingest).
func (c *Context) FollowStream() string {
	switch c.FollowExchange {
	case "binance_future":
		return "binance_future_depth" + strings.ToLower(c.FollowSymbol)
	case "okx":
		return "okx_depth" + strings.ToLower(strings.ReplaceAll(c.FollowSymbol, "-", ""))
	default:
		return c.FollowExchange + "_depth" + strings.ToLower(c.FollowSymbol)
	}
}

// LiveOrderIDs returns the union of every sequence this context owns —
// the set of ids believed live on the venue.
func (c *Context) LiveOrderIDs() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make(map[string]bool)
	for _, seq := range [][]types.CachedOrder{c.PrevAsks, c.PrevBids, c.PrevFarAsks, c.PrevFarBids} {
		for _, o := range seq {
			ids[o.ID] = true
		}
	}
	return ids
}
