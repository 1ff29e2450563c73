package mm

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"mm-core/internal/config"
	"mm-core/pkg/types"
)

// RunNear executes one near-side pass against an already-fetched
// follow-book snapshot: mirror, self-trade guard, diff-or-force-refresh,
// then submit and cancel.
func (c *Context) RunNear(ctx context.Context, cfg config.MMConfig, snapshot types.OrderBookSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rawAsks, rawBids []ProspectiveOrder
	if cfg.NearSide == config.NearBoth || cfg.NearSide == config.NearAsk {
		rawAsks = mirrorAskOrders(snapshot.Asks, cfg)
	}
	if cfg.NearSide == config.NearBoth || cfg.NearSide == config.NearBid {
		rawBids = mirrorBidOrders(snapshot.Bids, cfg)
	}
	asks, bids, topAsk, topBid := selfTradeGuard(rawAsks, rawBids, c)

	var askDiff, bidDiff diffResult
	if shouldForceRefresh(cfg.NearDiffRatePerRound, c.NoForceRefreshNum, cfg.ForceRefreshNum) {
		askDiff = diffResult{Cancel: c.PrevAsks, Emit: asks}
		bidDiff = diffResult{Cancel: c.PrevBids, Emit: bids}
		c.NoForceRefreshNum = 0
	} else {
		askDiff = diffSide(c.PrevAsks, asks, cfg.NearDiffRatePerRound, true)
		bidDiff = diffSide(c.PrevBids, bids, cfg.NearDiffRatePerRound, false)
		c.NoForceRefreshNum++
	}

	toEmit := mixAskBidOrders(askDiff.Emit, bidDiff.Emit)
	toCancel := append(append([]types.CachedOrder{}, askDiff.Cancel...), bidDiff.Cancel...)

	gen := newClientIDGen(cfg.MakerSymbol, false)
	tif := types.TimeInForce(cfg.NearTIF)
	submitted, err := c.submitBatch(ctx, toEmit, cfg.MakerSymbol, tif, gen)
	if err != nil {
		return fmt.Errorf("submit near orders: %w", err)
	}

	cancelled, cerr := c.cancelBatch(ctx, toCancel, cfg.MakerSymbol)
	if cerr != nil {
		return fmt.Errorf("cancel near orders: %w", cerr)
	}

	c.PrevAsks = append(askDiff.Keep, cachedOrdersForSide(submitted, types.SELL)...)
	c.PrevBids = append(bidDiff.Keep, cachedOrdersForSide(submitted, types.BUY)...)

	if cancelled == 0 && len(toCancel) > 0 {
		c.TopAsk = minNonZero(c.TopAsk, topAsk)
		c.TopBid = decimalMax(c.TopBid, topBid)
	} else {
		c.TopAsk = topAsk
		c.TopBid = topBid
	}
	return nil
}

// RunFar generates far orders from the same snapshot, diffs/cancels them
// into prev_far*, then reconciles any phantom open orders not accounted
// for by any prev sequence.
func (c *Context) RunFar(ctx context.Context, cfg config.MMConfig, snapshot types.OrderBookSnapshot, rng *rand.Rand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var asks, bids []ProspectiveOrder
	if cfg.FarSide == config.NearBoth || cfg.FarSide == config.NearAsk {
		asks = spreadFarAsks(snapshot.Asks, cfg, rng)
	}
	if cfg.FarSide == config.NearBoth || cfg.FarSide == config.NearBid {
		bids = spreadFarBids(snapshot.Bids, cfg, rng)
	}

	askDiff := diffSide(c.PrevFarAsks, asks, cfg.NearDiffRatePerRound, true)
	bidDiff := diffSide(c.PrevFarBids, bids, cfg.NearDiffRatePerRound, false)

	toEmit := mixAskBidOrders(askDiff.Emit, bidDiff.Emit)
	toCancel := append(append([]types.CachedOrder{}, askDiff.Cancel...), bidDiff.Cancel...)

	gen := newClientIDGen(cfg.MakerSymbol, true)
	tif := types.TimeInForce(cfg.FarTIF)
	submitted, err := c.submitBatch(ctx, toEmit, cfg.MakerSymbol, tif, gen)
	if err != nil {
		return fmt.Errorf("submit far orders: %w", err)
	}
	if _, err := c.cancelBatch(ctx, toCancel, cfg.MakerSymbol); err != nil {
		return fmt.Errorf("cancel far orders: %w", err)
	}

	c.PrevFarAsks = append(askDiff.Keep, cachedOrdersForSide(submitted, types.SELL)...)
	c.PrevFarBids = append(bidDiff.Keep, cachedOrdersForSide(submitted, types.BUY)...)

	return c.reconcilePhantomOrdersLocked(ctx, cfg.MakerSymbol)
}

// reconcilePhantomOrdersLocked cancels any venue-reported open order whose
// id is not present in any of this context's prev sequences. Caller must
// hold c.mu.
func (c *Context) reconcilePhantomOrdersLocked(ctx context.Context, symbol string) error {
	open, err := c.Client.OpenOrders(ctx, symbol)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	live := make(map[string]bool)
	for _, seq := range [][]types.CachedOrder{c.PrevAsks, c.PrevBids, c.PrevFarAsks, c.PrevFarBids} {
		for _, o := range seq {
			live[o.ID] = true
		}
	}
	var phantom []string
	for _, o := range open {
		if !live[o.OrderID] {
			phantom = append(phantom, o.OrderID)
		}
	}
	if len(phantom) == 0 {
		return nil
	}
	_, err = c.Client.BatchCancel(ctx, phantom, symbol)
	return err
}

// ClearAllNearOpenOrders is the failure policy invoked when a per-symbol
// pass errors: list open orders and cancel every one whose client id does
// not carry the far-order "F0" prefix, then reset near bookkeeping so the
// next pass re-emits from scratch.
func (c *Context) ClearAllNearOpenOrders(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	open, err := c.Client.OpenOrders(ctx, symbol)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	var ids []string
	for _, o := range open {
		if !isFarClientID(o.ClientID) {
			ids = append(ids, o.OrderID)
		}
	}
	for i := 0; i < len(ids); i += BatchSize {
		end := i + BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if _, err := c.Client.BatchCancel(ctx, ids[i:end], symbol); err != nil {
			return fmt.Errorf("clear near open orders: %w", err)
		}
	}
	c.PrevAsks = nil
	c.PrevBids = nil
	return nil
}

// submittedOrder pairs an accepted order's venue id with the side it was
// submitted on, so a caller that mixed asks and bids into one batch can
// split the results back out per side.
type submittedOrder struct {
	types.CachedOrder
	Side types.Side
}

// submitBatch assigns client ids and submits prospective orders in
// batches of BatchSize, returning one submittedOrder per accepted
// response (empty OrderID responses, i.e. rejections, are dropped).
func (c *Context) submitBatch(ctx context.Context, orders []ProspectiveOrder, symbol string, tif types.TimeInForce, gen *clientIDGen) ([]submittedOrder, error) {
	var out []submittedOrder
	for i := 0; i < len(orders); i += BatchSize {
		end := i + BatchSize
		if end > len(orders) {
			end = len(orders)
		}
		chunk := orders[i:end]

		reqs := make([]types.NewOrder, len(chunk))
		for j, o := range chunk {
			reqs[j] = types.NewOrder{
				Symbol:   symbol,
				ClientID: gen.next(o.Side),
				Side:     o.Side,
				Type:     types.OrderTypeLimit,
				Quantity: o.Qty,
				Price:    o.Price,
				TIF:      tif,
			}
		}

		ids, err := c.Client.BatchMakeOrders(ctx, reqs, symbol)
		if err != nil {
			return out, err
		}
		for j, id := range ids {
			if id.OrderID == "" || j >= len(chunk) {
				continue
			}
			out = append(out, submittedOrder{
				CachedOrder: types.CachedOrder{Price: chunk[j].Price, ID: id.OrderID},
				Side:        chunk[j].Side,
			})
		}
	}
	return out, nil
}

func cachedOrdersForSide(submitted []submittedOrder, side types.Side) []types.CachedOrder {
	var out []types.CachedOrder
	for _, s := range submitted {
		if s.Side == side {
			out = append(out, s.CachedOrder)
		}
	}
	return out
}

// cancelBatch cancels previous orders in batches of BatchSize, returning
// the total number of ids the venue confirmed cancelled.
func (c *Context) cancelBatch(ctx context.Context, orders []types.CachedOrder, symbol string) (int, error) {
	total := 0
	for i := 0; i < len(orders); i += BatchSize {
		end := i + BatchSize
		if end > len(orders) {
			end = len(orders)
		}
		ids := make([]string, end-i)
		for j, o := range orders[i:end] {
			ids[j] = o.ID
		}
		cancelled, err := c.Client.BatchCancel(ctx, ids, symbol)
		if err != nil {
			return total, err
		}
		total += len(cancelled)
	}
	return total, nil
}

// mixAskBidOrders interleaves ask and bid emissions one-for-one so a
// partially-truncated batch submission doesn't skew one side of the book;
// the longer side's tail is appended once the shorter side is exhausted.
func mixAskBidOrders(asks, bids []ProspectiveOrder) []ProspectiveOrder {
	out := make([]ProspectiveOrder, 0, len(asks)+len(bids))
	n := len(asks)
	if len(bids) > n {
		n = len(bids)
	}
	for i := 0; i < n; i++ {
		if i < len(asks) {
			out = append(out, asks[i])
		}
		if i < len(bids) {
			out = append(out, bids[i])
		}
	}
	return out
}

func minNonZero(a, b decimal.Decimal) decimal.Decimal {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.LessThan(b) {
		return a
	}
	return b
}

func decimalMax(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
