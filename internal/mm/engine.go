package mm

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"mm-core/internal/cache"
	"mm-core/internal/config"
	"mm-core/internal/venue"
)

// Engine runs one or more symbol contexts, each ticking its near pass on
// near_interval_ms and its far pass on far_interval_ms, dispatched as a
// goroutine per symbol per tick and joined at a WaitGroup barrier so one
// slow symbol cannot delay the rest of the round from starting.
type Engine struct {
	cfg    config.MMConfig
	cache  *cache.BucketCache
	logger *slog.Logger
	rng    *rand.Rand

	contexts map[string]*Context // keyed by maker symbol
	mu       sync.Mutex
}

// New creates a market-making engine for a single (follow, maker) symbol
// pair.
func New(cfg config.MMConfig, client venue.Client, store cache.Store, logger *slog.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		cache:    cache.NewBucketCache(store),
		logger:   logger.With("component", "mm-engine"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		contexts: make(map[string]*Context),
	}
	e.contexts[cfg.MakerSymbol] = NewContext(client, cfg.FollowExchange, cfg.FollowSymbol, cfg.MakerSymbol)
	return e
}

// Run ticks the near pass (and, when configured, the far pass) forever
// until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	nearTicker := time.NewTicker(time.Duration(e.cfg.NearIntervalMs) * time.Millisecond)
	defer nearTicker.Stop()

	var farTicker *time.Ticker
	var farC <-chan time.Time
	if e.cfg.FarIntervalMs > 0 {
		farTicker = time.NewTicker(time.Duration(e.cfg.FarIntervalMs) * time.Millisecond)
		defer farTicker.Stop()
		farC = farTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-nearTicker.C:
			e.tick(ctx, false)
		case <-farC:
			e.tick(ctx, true)
		}
	}
}

// tick runs one pass (near or far) across every symbol context
// concurrently, joined at a WaitGroup barrier.
func (e *Engine) tick(ctx context.Context, far bool) {
	e.mu.Lock()
	symbols := make([]*Context, 0, len(e.contexts))
	for _, c := range e.contexts {
		symbols = append(symbols, c)
	}
	e.mu.Unlock()

	var wg sync.WaitGroup
	for _, symCtx := range symbols {
		wg.Add(1)
		go func(c *Context) {
			defer wg.Done()
			e.runOne(ctx, c, far)
		}(symCtx)
	}
	wg.Wait()
}

// runOne executes a single symbol's pass, applying the failure policy
// (clear all near open orders, log, continue) on any error.
func (e *Engine) runOne(ctx context.Context, c *Context, far bool) {
	snapshot, found, err := e.cache.GetOrderBook(ctx, c.FollowStream())
	if err != nil {
		e.logger.Warn("read follow book", "error", err, "symbol", c.MakerSymbol)
		return
	}
	if !found {
		e.logger.Debug("follow book not fresh, skipping pass", "symbol", c.MakerSymbol, "far", far)
		return
	}

	runErr := func() error {
		if far {
			return c.RunFar(ctx, e.cfg, *snapshot, e.rng)
		}
		return c.RunNear(ctx, e.cfg, *snapshot)
	}()

	if runErr != nil {
		e.logger.Error("mm pass failed, clearing open orders", "error", runErr, "symbol", c.MakerSymbol, "far", far)
		if clearErr := c.ClearAllNearOpenOrders(ctx, c.MakerSymbol); clearErr != nil {
			e.logger.Error("failed to clear open orders after pass failure", "error", clearErr, "symbol", c.MakerSymbol)
		}
	}
}
