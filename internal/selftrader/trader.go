package selftrader

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"mm-core/internal/cache"
	"mm-core/internal/config"
	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

// Trader runs the self-trade loop for one symbol pair: every interval it
// reads the follow venue's last-trade ticker and the maker venue's top of
// book, derives a price/qty, and submits a paired maker/taker order.
type Trader struct {
	cfg    config.STConfig
	client venue.Client
	cache  *cache.BucketCache
	logger *slog.Logger
	rng    *rand.Rand
	ctx    *Context
}

// New builds a Trader for the given config, venue client and cache store.
func New(cfg config.STConfig, client venue.Client, store cache.Store, logger *slog.Logger) *Trader {
	return &Trader{
		cfg:    cfg,
		client: client,
		cache:  cache.NewBucketCache(store),
		logger: logger.With("component", "self-trader"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:    NewContext(),
	}
}

// tickerStream returns the cache key a quote ingester publishes the follow
// symbol's last-trade ticker under, matching the ingest package's key
// convention regardless of venue.
func tickerStream(followSymbol string) string {
	return "ticker" + strings.ToUpper(strings.ReplaceAll(followSymbol, "-", ""))
}

// Run drives the tick loop until ctx is cancelled.
func (t *Trader) Run(ctx context.Context) error {
	interval := time.Duration(t.cfg.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Trader) tick(ctx context.Context) {
	quoteTimeout := time.Duration(t.cfg.QuoteTimeoutMs) * time.Millisecond
	if quoteTimeout <= 0 {
		quoteTimeout = time.Duration(t.cfg.IntervalMs) * time.Millisecond
	}
	tctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	trade, found, err := t.cache.GetTicker(tctx, tickerStream(t.cfg.FollowSymbol))
	if err != nil {
		t.logger.Error("ticker read failed", "error", err)
		return
	}
	if !found || trade == nil {
		t.logger.Debug("no follow ticker cached yet, skipping tick", "symbol", t.cfg.FollowSymbol)
		return
	}

	top, err := t.client.TopAskBid(tctx, t.cfg.MakerSymbol)
	if err != nil {
		t.logger.Error("top-of-book read failed", "error", err)
		return
	}
	if top.AskPrice.IsZero() || top.BidPrice.IsZero() {
		t.logger.Debug("missing top of book, skipping tick", "symbol", t.cfg.MakerSymbol)
		return
	}

	in := TickInput{
		TradePrice: trade.Price,
		TradeQty:   trade.Qty,
		TopAsk:     top.AskPrice,
		TopAskQty:  top.AskQty,
		TopBid:     top.BidPrice,
		TopBidQty:  top.BidQty,
	}

	t.ctx.mu.Lock()
	result, ok := computeTick(in, t.cfg, t.ctx, t.rng, time.Now())
	t.ctx.mu.Unlock()
	if !ok {
		t.logger.Debug("no usable price for this tick, skipping")
		return
	}

	side := types.BUY
	if t.rng.Intn(2) == 1 {
		side = types.SELL
	}
	submitPair(ctx, t.client, t.cfg, side, result, time.Now().UnixMilli(), t.logger)
}
