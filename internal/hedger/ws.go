package hedger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"mm-core/internal/venue"
	"mm-core/pkg/types"
)

const (
	privateWSPath    = "/api/v1/private/ws"
	reconnectBackoff = 5 * time.Second
	missedPongLimit  = 5
	pingInterval     = 10 * time.Second
)

// fillTransaction is one leg of an inbound spot-trade-event message.
type fillTransaction struct {
	Direction string `json:"direction"`
	AccountID string `json:"accountId"`
	TradeID   string `json:"tradeId"`
	OrderID   string `json:"orderId"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Qty       string `json:"qty"`
	Amount    string `json:"amount"`
	MatchTime int64  `json:"matchTime"`
}

type spotTradeEvent struct {
	Type                 string            `json:"type"`
	MatchAccountID       string            `json:"matchAccountId"`
	OrderFillTransaction []fillTransaction `json:"orderFillTransaction"`
}

type pingMessage struct {
	Type string `json:"type"`
}

// FillFeed is the private WS client delivering maker-fill events to a
// FillProcessor. It keeps the connection alive with ping/pong and resets
// its missed-pong counter each time a pong reply is sent successfully.
type FillFeed struct {
	wsURL   string
	auth    *venue.Auth
	proc    *FillProcessor
	logger  *slog.Logger
	matchID string
}

// NewFillFeed creates a fill feed. matchAccountID is stored on the feed;
// the self-trade skip compares each fill's accountId with the
// matchAccountId carried in the same message, not with this value.
func NewFillFeed(wsURL string, auth *venue.Auth, matchAccountID string, proc *FillProcessor, logger *slog.Logger) *FillFeed {
	return &FillFeed{
		wsURL:   wsURL,
		auth:    auth,
		proc:    proc,
		logger:  logger.With("component", "hedger-ws"),
		matchID: matchAccountID,
	}
}

// Run connects and maintains the WS connection with fixed reconnect
// backoff until ctx is cancelled.
func (f *FillFeed) Run(ctx context.Context) error {
	for {
		err := f.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("hedger websocket disconnected, reconnecting", "error", err, "backoff", reconnectBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (f *FillFeed) connectAndRead(ctx context.Context) error {
	headers := f.auth.WSHeaders(privateWSPath)
	header := make(map[string][]string, len(headers))
	for k, v := range headers {
		header[k] = []string{v}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL+privateWSPath, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	f.logger.Info("hedger websocket connected")

	missedPongs := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn.SetReadDeadline(time.Now().Add(pingInterval * (missedPongLimit + 1)))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var ping pingMessage
		if json.Unmarshal(msg, &ping) == nil && ping.Type == "ping" {
			if err := conn.WriteJSON(venue.Pong()); err != nil {
				missedPongs++
				if missedPongs >= missedPongLimit {
					return fmt.Errorf("missed %d consecutive pongs", missedPongs)
				}
				continue
			}
			missedPongs = 0
			continue
		}

		f.handleMessage(msg)
	}
}

func (f *FillFeed) handleMessage(raw []byte) {
	var evt spotTradeEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		f.logger.Debug("ignoring unparsable message", "data", string(raw))
		return
	}
	if evt.Type != "spot-trade-event" {
		return
	}

	for _, tx := range evt.OrderFillTransaction {
		if tx.Direction != "MAKER" {
			continue
		}
		if tx.AccountID == evt.MatchAccountID {
			continue // self-trade, not an external fill
		}

		qty, err := decimal.NewFromString(tx.Qty)
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			continue
		}

		fill := types.FilledOrder{
			TradeID:   tx.TradeID,
			Qty:       qty,
			Amount:    amount,
			Symbol:    tx.Symbol,
			Side:      types.Side(tx.Side),
			OrderID:   tx.OrderID,
			MatchTime: time.UnixMilli(tx.MatchTime),
		}
		f.proc.HandleFill(fill)
	}
}
