package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"mm-core/internal/cache"
	"mm-core/pkg/types"
)

// BinanceIngester subscribes to combined depth20@100ms and aggTrade
// streams for a fixed symbol set. Binance depth messages are always full
// top-N snapshots, so there is no running-book merge here: every message
// is parsed, sorted, and republished directly.
type BinanceIngester struct {
	wsURL   string
	symbols []string
	cache   *cache.BucketCache
	logger  *slog.Logger
}

// NewBinanceIngester creates an ingester for the given symbols (lowercase,
// e.g. "btcusdt") against a Binance-compatible combined-stream endpoint.
func NewBinanceIngester(wsURL string, symbols []string, store cache.Store, logger *slog.Logger) *BinanceIngester {
	return &BinanceIngester{
		wsURL:   wsURL,
		symbols: symbols,
		cache:   cache.NewBucketCache(store),
		logger:  logger.With("component", "ingest-binance"),
	}
}

// depthStream returns the cache key for a symbol's full-depth snapshot.
func depthStream(symbol string) string {
	return "binance_future_depth" + strings.ToLower(symbol)
}

// tickerStream returns the cache key for a symbol's aggregate-trade ticker.
func tickerStream(symbol string) string {
	return "ticker" + strings.ToUpper(symbol)
}

func (b *BinanceIngester) streamURL() string {
	parts := make([]string, 0, len(b.symbols)*2)
	for _, s := range b.symbols {
		sym := strings.ToLower(s)
		parts = append(parts, sym+"@depth20@100ms", sym+"@aggTrade")
	}
	return b.wsURL + "/stream?streams=" + strings.Join(parts, "/")
}

// Run connects and maintains the WS connection with fixed reconnect
// backoff until ctx is cancelled.
func (b *BinanceIngester) Run(ctx context.Context) error {
	for {
		err := b.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("binance websocket disconnected, reconnecting", "error", err, "backoff", reconnectBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (b *BinanceIngester) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	b.logger.Info("binance websocket connected", "symbols", b.symbols)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		b.handleMessage(ctx, msg)
	}
}

type binanceEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type binanceDepthMsg struct {
	Symbol string     `json:"s"`
	Asks   [][2]string `json:"a"`
	Bids   [][2]string `json:"b"`
}

type binanceAggTradeMsg struct {
	Symbol string `json:"s"`
	Price  string `json:"p"`
	Qty    string `json:"q"`
}

func (b *BinanceIngester) handleMessage(ctx context.Context, raw []byte) {
	var env binanceEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		b.logger.Debug("ignoring non-envelope message", "data", string(raw))
		return
	}

	switch {
	case strings.Contains(env.Stream, "@depth"):
		b.handleDepth(ctx, env.Data)
	case strings.Contains(env.Stream, "@aggTrade"):
		b.handleAggTrade(ctx, env.Data)
	}
}

func (b *BinanceIngester) handleDepth(ctx context.Context, data json.RawMessage) {
	var msg binanceDepthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		b.logger.Error("unmarshal depth message", "error", err)
		return
	}

	snap := types.OrderBookSnapshot{
		Asks: toLevels(msg.Asks),
		Bids: toLevels(msg.Bids),
	}
	sort.Slice(snap.Asks, func(i, j int) bool { return snap.Asks[i].Price.LessThan(snap.Asks[j].Price) })
	sort.Slice(snap.Bids, func(i, j int) bool { return snap.Bids[i].Price.GreaterThan(snap.Bids[j].Price) })

	symbol := msg.Symbol
	if symbol == "" && len(b.symbols) > 0 {
		symbol = b.symbols[0]
	}
	if err := b.cache.PublishOrderBook(ctx, depthStream(symbol), snap); err != nil {
		b.logger.Warn("publish order book", "error", err, "symbol", symbol)
	}
}

func (b *BinanceIngester) handleAggTrade(ctx context.Context, data json.RawMessage) {
	var msg binanceAggTradeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		b.logger.Error("unmarshal aggTrade message", "error", err)
		return
	}
	price, err := decimal.NewFromString(msg.Price)
	if err != nil {
		b.logger.Warn("invalid trade price", "price", msg.Price)
		return
	}
	qty, err := decimal.NewFromString(msg.Qty)
	if err != nil {
		b.logger.Warn("invalid trade qty", "qty", msg.Qty)
		return
	}
	if err := b.cache.PublishTicker(ctx, tickerStream(msg.Symbol), types.Ticker{Price: price, Qty: qty}); err != nil {
		b.logger.Warn("publish ticker", "error", err, "symbol", msg.Symbol)
	}
}

// toLevels parses [price,qty] string pairs into PriceLevels, preserving
// the original decimal precision.
func toLevels(raw [][2]string) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			continue
		}
		qty, err := decimal.NewFromString(pair[1])
		if err != nil {
			continue
		}
		out = append(out, types.PriceLevel{Price: price, Qty: qty})
	}
	return out
}
