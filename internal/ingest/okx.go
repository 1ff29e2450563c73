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

// runningBook is the per-symbol merged order book OKXIngester maintains
// between snapshot and update messages. Prices are kept as their raw
// string keys so deletions (qty == 0) remove entries exactly, without a
// float/decimal round-trip.
type runningBook struct {
	asks      map[string]decimal.Decimal
	bids      map[string]decimal.Decimal
	seqID     int64
	prevSeqID int64
	ts        int64 // book timestamp, ms
}

func newRunningBook() *runningBook {
	return &runningBook{
		asks: make(map[string]decimal.Decimal),
		bids: make(map[string]decimal.Decimal),
	}
}

// okxDepthMsg is one "books" channel message: either a full snapshot
// (action == "snapshot") or an incremental update (action == "update").
type okxDepthMsg struct {
	InstID    string      `json:"instId"`
	Action    string      `json:"action"`
	Asks      [][2]string `json:"asks"`
	Bids      [][2]string `json:"bids"`
	SeqID     int64       `json:"seqId"`
	PrevSeqID int64       `json:"prevSeqId"`
	TS        int64       `json:"ts,string"`
}

type okxTickerMsg struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
	LastSz string `json:"lastSz"`
}

type okxEnvelope struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data json.RawMessage `json:"data"`
}

// OKXIngester maintains a per-symbol snapshot+delta running book with
// seqId/prevSeqId contiguity, buffering out-of-order updates until the
// message that continues the chain arrives.
type OKXIngester struct {
	wsURL   string
	symbols []string
	cache   *cache.BucketCache
	logger  *slog.Logger

	books   map[string]*runningBook
	buffers map[string][]okxDepthMsg
}

// NewOKXIngester creates an ingester for the given instrument IDs (e.g.
// "BTC-USDT-SWAP") against an OKX-compatible public WS endpoint.
func NewOKXIngester(wsURL string, symbols []string, store cache.Store, logger *slog.Logger) *OKXIngester {
	return &OKXIngester{
		wsURL:   wsURL,
		symbols: symbols,
		cache:   cache.NewBucketCache(store),
		logger:  logger.With("component", "ingest-okx"),
		books:   make(map[string]*runningBook),
		buffers: make(map[string][]okxDepthMsg),
	}
}

func okxDepthStream(instID string) string {
	return "okx_depth" + strings.ToLower(strings.ReplaceAll(instID, "-", ""))
}

func okxTickerStream(instID string) string {
	return "ticker" + strings.ToUpper(strings.ReplaceAll(instID, "-", ""))
}

// Run connects and maintains the WS connection with fixed reconnect
// backoff. On every reconnect the running books and buffers are dropped;
// the next snapshot re-bootstraps correctness (no gap-fill REST fetch).
func (o *OKXIngester) Run(ctx context.Context) error {
	for {
		o.books = make(map[string]*runningBook)
		o.buffers = make(map[string][]okxDepthMsg)

		err := o.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warn("okx websocket disconnected, reconnecting", "error", err, "backoff", reconnectBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (o *OKXIngester) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, o.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := o.subscribe(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	o.logger.Info("okx websocket connected", "symbols", o.symbols)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		o.handleMessage(ctx, msg)
	}
}

func (o *OKXIngester) subscribe(conn *websocket.Conn) error {
	args := make([]map[string]string, 0, len(o.symbols)*2)
	for _, s := range o.symbols {
		args = append(args, map[string]string{"channel": "books", "instId": s})
		args = append(args, map[string]string{"channel": "tickers", "instId": s})
	}
	msg := map[string]interface{}{"op": "subscribe", "args": args}
	return conn.WriteJSON(msg)
}

func (o *OKXIngester) handleMessage(ctx context.Context, raw []byte) {
	var env okxEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		o.logger.Debug("ignoring non-envelope message", "data", string(raw))
		return
	}
	switch env.Arg.Channel {
	case "books":
		o.handleBooks(ctx, env.Data)
	case "tickers":
		o.handleTickers(ctx, env.Data)
	}
}

func (o *OKXIngester) handleBooks(ctx context.Context, data json.RawMessage) {
	var msgs []okxDepthMsg
	if err := json.Unmarshal(data, &msgs); err != nil {
		o.logger.Error("unmarshal books message", "error", err)
		return
	}
	for _, msg := range msgs {
		if msg.Action == "snapshot" {
			book := newRunningBook()
			applyLevels(book.asks, msg.Asks)
			applyLevels(book.bids, msg.Bids)
			book.seqID = msg.SeqID
			book.prevSeqID = msg.PrevSeqID
			book.ts = msg.TS
			o.books[msg.InstID] = book
			o.buffers[msg.InstID] = nil
			o.publishBook(ctx, msg.InstID, book)
			continue
		}

		o.buffers[msg.InstID] = append(o.buffers[msg.InstID], msg)
		o.drain(ctx, msg.InstID)
	}
}

// drain repeatedly looks for the buffered update whose prevSeqId matches
// the running book's seqId, applies it, and republishes — until no such
// update is available. Stale messages (ts older than the book) are
// dropped first so they never block the contiguity search.
func (o *OKXIngester) drain(ctx context.Context, instID string) {
	book := o.books[instID]
	if book == nil {
		return // snapshot hasn't arrived yet; keep buffering
	}

	for {
		buf := o.buffers[instID]
		fresh := buf[:0]
		for _, m := range buf {
			if m.TS >= book.ts {
				fresh = append(fresh, m)
			}
		}
		o.buffers[instID] = fresh

		idx := -1
		for i, m := range fresh {
			if m.PrevSeqID == book.seqID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}

		m := fresh[idx]
		applyLevels(book.asks, m.Asks)
		applyLevels(book.bids, m.Bids)
		book.seqID = m.SeqID
		book.prevSeqID = m.PrevSeqID
		book.ts = m.TS
		o.buffers[instID] = append(append([]okxDepthMsg{}, fresh[:idx]...), fresh[idx+1:]...)

		o.publishBook(ctx, instID, book)
	}
}

// applyLevels upserts price/qty pairs into the running book's side map,
// deleting entries whose qty is exactly zero rather than storing a zero.
func applyLevels(side map[string]decimal.Decimal, levels [][2]string) {
	for _, pair := range levels {
		qty, err := decimal.NewFromString(pair[1])
		if err != nil {
			continue
		}
		if qty.IsZero() {
			delete(side, pair[0])
			continue
		}
		side[pair[0]] = qty
	}
}

func (o *OKXIngester) publishBook(ctx context.Context, instID string, book *runningBook) {
	snap := types.OrderBookSnapshot{
		Asks: sortedLevels(book.asks, true),
		Bids: sortedLevels(book.bids, false),
	}
	if err := o.cache.PublishOrderBook(ctx, okxDepthStream(instID), snap); err != nil {
		o.logger.Warn("publish order book", "error", err, "symbol", instID)
	}
}

// sortedLevels converts a price(string)->qty map into sorted PriceLevels.
// ascending=true sorts low-to-high (asks); false sorts high-to-low (bids).
func sortedLevels(side map[string]decimal.Decimal, ascending bool) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(side))
	for priceStr, qty := range side {
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			continue
		}
		out = append(out, types.PriceLevel{Price: price, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out
}

func (o *OKXIngester) handleTickers(ctx context.Context, data json.RawMessage) {
	var msgs []okxTickerMsg
	if err := json.Unmarshal(data, &msgs); err != nil {
		o.logger.Error("unmarshal tickers message", "error", err)
		return
	}
	for _, msg := range msgs {
		price, err := decimal.NewFromString(msg.Last)
		if err != nil {
			continue
		}
		qty, err := decimal.NewFromString(msg.LastSz)
		if err != nil {
			continue
		}
		if err := o.cache.PublishTicker(ctx, okxTickerStream(msg.InstID), types.Ticker{Price: price, Qty: qty}); err != nil {
			o.logger.Warn("publish ticker", "error", err, "symbol", msg.InstID)
		}
	}
}
